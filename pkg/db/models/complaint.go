package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

// Complaint records a grievance filed by a user against their village supply.
type Complaint struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Village     string                `gorm:"type:text;not null;index"`
	Subject     string                `gorm:"type:text;not null"`
	Description string                `gorm:"type:text;not null"`
	Status      enums.ComplaintStatus `gorm:"type:text;not null;default:pending"`
	Response    *string               `gorm:"type:text"`
	ResolvedBy  *uuid.UUID            `gorm:"column:resolved_by;type:uuid"`
	ResolvedAt  *time.Time            `gorm:"column:resolved_at"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
