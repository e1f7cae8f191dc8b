package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

// Booking ties a user to a time slot. A user holds at most one booking in the
// booked state at any time; the service layer enforces this before insert.
type Booking struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey"`
	SlotID    uuid.UUID           `gorm:"column:slot_id;type:uuid;not null;index"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status    enums.BookingStatus `gorm:"type:text;not null;default:booked"`
	BookedBy  uuid.UUID           `gorm:"column:booked_by;type:uuid;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Slot *TimeSlot `gorm:"foreignKey:SlotID"`
	User *User     `gorm:"foreignKey:UserID"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
