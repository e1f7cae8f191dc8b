package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock is the central ration ledger owned by platform admins. Quantity tracks
// the undistributed balance remaining at the admin level.
type Stock struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Item      string          `gorm:"type:text;not null;index"`
	Quantity  int             `gorm:"not null;default:0"`
	Unit      string          `gorm:"type:text;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedBy uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
