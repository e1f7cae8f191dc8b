package stocks

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
)

// CreateStockRequest is the payload for adding or restocking central inventory.
type CreateStockRequest struct {
	Item     string          `json:"item" validate:"required"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Unit     string          `json:"unit" validate:"required"`
	Price    decimal.Decimal `json:"price"`
}

// UpdateStockRequest overwrites the stored quantity, and optionally the price.
type UpdateStockRequest struct {
	Quantity int              `json:"quantity" validate:"gte=0"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// StockDTO is the transport shape for a central stock row.
type StockDTO struct {
	ID        uuid.UUID       `json:"id"`
	Item      string          `json:"item"`
	Quantity  int             `json:"quantity"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	CreatedBy uuid.UUID       `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CatalogEntry aggregates remaining quantity per distinct item and unit.
type CatalogEntry struct {
	Item          string `json:"item"`
	Unit          string `json:"unit"`
	TotalQuantity int    `json:"total_quantity"`
}

func (c CreateStockRequest) toModel(createdBy uuid.UUID) *models.Stock {
	return &models.Stock{
		Item:      c.Item,
		Quantity:  c.Quantity,
		Unit:      c.Unit,
		Price:     c.Price,
		CreatedBy: createdBy,
	}
}

func FromModel(s *models.Stock) *StockDTO {
	if s == nil {
		return nil
	}

	return &StockDTO{
		ID:        s.ID,
		Item:      s.Item,
		Quantity:  s.Quantity,
		Unit:      s.Unit,
		Price:     s.Price,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromModels(stockModels []models.Stock) []*StockDTO {
	out := make([]*StockDTO, 0, len(stockModels))
	for i := range stockModels {
		out = append(out, FromModel(&stockModels[i]))
	}
	return out
}
