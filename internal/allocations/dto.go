package allocations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
)

// AllocateStockRequest moves central stock to a village admin.
type AllocateStockRequest struct {
	VillageAdminID uuid.UUID `json:"village_admin_id" validate:"required"`
	StockID        uuid.UUID `json:"stock_id" validate:"required"`
	Quantity       int       `json:"quantity" validate:"required,gt=0"`
}

// AllocateToUserRequest moves a village admin's balance to a user.
type AllocateToUserRequest struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	StockID  uuid.UUID `json:"stock_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// BulkAllocateRequest carries multiple user allocations in one batch.
type BulkAllocateRequest struct {
	Lines []AllocateToUserRequest `json:"lines" validate:"required,min=1,dive"`
}

// AllocationDTO is the transport shape for a holder's balance of one stock.
type AllocationDTO struct {
	ID         uuid.UUID       `json:"id"`
	HolderID   uuid.UUID       `json:"holder_id"`
	HolderName string          `json:"holder_name,omitempty"`
	StockID    uuid.UUID       `json:"stock_id"`
	Item       string          `json:"item"`
	Unit       string          `json:"unit"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	GrantedBy  uuid.UUID       `json:"granted_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func FromModel(a *models.Allocation) *AllocationDTO {
	if a == nil {
		return nil
	}

	dto := &AllocationDTO{
		ID:        a.ID,
		HolderID:  a.HolderID,
		StockID:   a.StockID,
		Quantity:  a.Quantity,
		GrantedBy: a.GrantedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Stock != nil {
		dto.Item = a.Stock.Item
		dto.Unit = a.Stock.Unit
		dto.Price = a.Stock.Price
	}
	if a.Holder != nil {
		dto.HolderName = a.Holder.Name
	}
	return dto
}

func FromModels(allocationModels []models.Allocation) []*AllocationDTO {
	out := make([]*AllocationDTO, 0, len(allocationModels))
	for i := range allocationModels {
		out = append(out, FromModel(&allocationModels[i]))
	}
	return out
}
