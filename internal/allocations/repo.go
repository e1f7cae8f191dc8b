package allocations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

// Repository exposes allocation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an allocations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindForHolder loads the single allocation row for a holder and stock.
func (r *Repository) FindForHolder(ctx context.Context, holderID, stockID uuid.UUID) (*models.Allocation, error) {
	var allocation models.Allocation
	err := r.db.WithContext(ctx).
		Preload("Stock").
		Where("holder_id = ? AND stock_id = ?", holderID, stockID).
		First(&allocation).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

// Grant credits qty to the holder's balance for a stock. Repeated grants
// accumulate on the one row keyed by (holder_id, stock_id).
func (r *Repository) Grant(ctx context.Context, holderID, stockID uuid.UUID, qty int, grantedBy uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Where("holder_id = ? AND stock_id = ?", holderID, stockID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&models.Allocation{
		HolderID:  holderID,
		StockID:   stockID,
		Quantity:  qty,
		GrantedBy: grantedBy,
	}).Error
}

// DecrementQuantity debits qty only while the holder's balance covers it.
// Returns the number of rows touched so callers can detect a shortfall.
func (r *Repository) DecrementQuantity(ctx context.Context, holderID, stockID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Allocation{}).
		Where("holder_id = ? AND stock_id = ? AND quantity >= ?", holderID, stockID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

// ListForHolder returns every allocation a holder owns with the stock loaded.
func (r *Repository) ListForHolder(ctx context.Context, holderID uuid.UUID) ([]models.Allocation, error) {
	var out []models.Allocation
	err := r.db.WithContext(ctx).
		Preload("Stock").
		Where("holder_id = ?", holderID).
		Order("updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByHolderRole returns every allocation held by users of the given role.
func (r *Repository) ListByHolderRole(ctx context.Context, role enums.UserRole) ([]models.Allocation, error) {
	var out []models.Allocation
	err := r.db.WithContext(ctx).
		Preload("Stock").
		Preload("Holder").
		Joins("JOIN users ON users.id = allocations.holder_id").
		Where("users.role = ?", role).
		Order("allocations.updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
