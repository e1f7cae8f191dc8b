package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification stores broadcast announcements visible to every account.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	Message   string    `gorm:"type:text;not null"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
