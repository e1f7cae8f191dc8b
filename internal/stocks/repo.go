package stocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
)

// Repository exposes stock persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a stocks repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new stock row.
func (r *Repository) Create(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

// FindByID loads a stock row by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	var stock models.Stock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// FindExact locates the row matching item, unit, and price so that
// a repeated purchase tops up the existing balance instead of forking
// a second row.
func (r *Repository) FindExact(ctx context.Context, item, unit string, price decimal.Decimal) (*models.Stock, error) {
	var stock models.Stock
	err := r.db.WithContext(ctx).
		Where("item = ? AND unit = ? AND price = ?", item, unit, price).
		First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// AddQuantity increments the stored balance by delta.
func (r *Repository) AddQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta)).Error
}

// DecrementQuantity subtracts qty only while the balance can cover it.
// Returns the number of rows touched so callers can detect a shortfall.
func (r *Repository) DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

// Save persists the full stock row.
func (r *Repository) Save(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// List returns every stock row, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Stock, error) {
	var out []models.Stock
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Catalog aggregates the remaining balance per distinct item and unit.
func (r *Repository) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	var out []CatalogEntry
	err := r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Select("item, unit, SUM(quantity) AS total_quantity").
		Group("item, unit").
		Order("item ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
