package stocks

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

// Service defines the central inventory operations exposed to controllers.
type Service interface {
	CreateOrRestock(ctx context.Context, req CreateStockRequest, createdBy uuid.UUID) (*StockDTO, error)
	UpdateStock(ctx context.Context, stockID uuid.UUID, req UpdateStockRequest) (*StockDTO, error)
	List(ctx context.Context) ([]*StockDTO, error)
	Catalog(ctx context.Context) ([]CatalogEntry, error)
	Get(ctx context.Context, stockID uuid.UUID) (*StockDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a stocks service bound to the given repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stocks repository required")
	}
	return &service{repo: repo}, nil
}

// CreateOrRestock tops up the balance when an identical item, unit, and
// price row already exists, and creates a fresh row otherwise.
func (s *service) CreateOrRestock(ctx context.Context, req CreateStockRequest, createdBy uuid.UUID) (*StockDTO, error) {
	item := strings.TrimSpace(req.Item)
	unit := strings.TrimSpace(req.Unit)
	if item == "" || unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item and unit are required")
	}
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	existing, err := s.repo.FindExact(ctx, item, unit, req.Price)
	if err == nil {
		if err := s.repo.AddQuantity(ctx, existing.ID, req.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock")
		}
		existing.Quantity += req.Quantity
		return FromModel(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup stock")
	}

	stock := CreateStockRequest{
		Item:     item,
		Quantity: req.Quantity,
		Unit:     unit,
		Price:    req.Price,
	}.toModel(createdBy)
	if err := s.repo.Create(ctx, stock); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create stock")
	}
	return FromModel(stock), nil
}

// UpdateStock overwrites the quantity, and the price when provided.
func (s *service) UpdateStock(ctx context.Context, stockID uuid.UUID, req UpdateStockRequest) (*StockDTO, error) {
	if req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	stock, err := s.repo.FindByID(ctx, stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup stock")
	}

	stock.Quantity = req.Quantity
	if req.Price != nil {
		stock.Price = *req.Price
	}
	if err := s.repo.Save(ctx, stock); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save stock")
	}
	return FromModel(stock), nil
}

func (s *service) List(ctx context.Context) ([]*StockDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stocks")
	}
	return FromModels(rows), nil
}

func (s *service) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	entries, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalog")
	}
	return entries, nil
}

func (s *service) Get(ctx context.Context, stockID uuid.UUID) (*StockDTO, error) {
	stock, err := s.repo.FindByID(ctx, stockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup stock")
	}
	return FromModel(stock), nil
}
