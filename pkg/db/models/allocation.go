package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allocation holds the quantity of a stock item granted to a holder, either a
// village admin receiving from the central ledger or an end user receiving
// from a village admin. One row exists per (holder, stock) pair; repeated
// grants accumulate into the same row.
type Allocation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	HolderID  uuid.UUID `gorm:"column:holder_id;type:uuid;not null;uniqueIndex:idx_allocations_holder_stock"`
	StockID   uuid.UUID `gorm:"column:stock_id;type:uuid;not null;uniqueIndex:idx_allocations_holder_stock"`
	Quantity  int       `gorm:"not null;default:0"`
	GrantedBy uuid.UUID `gorm:"column:granted_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Stock  *Stock `gorm:"foreignKey:StockID"`
	Holder *User  `gorm:"foreignKey:HolderID"`
}

func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
