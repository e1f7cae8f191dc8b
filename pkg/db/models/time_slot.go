package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

// TimeSlot is a bookable collection window for a village. BookedCount mirrors
// the number of active bookings and is only mutated under the same transaction
// that inserts or cancels a booking.
type TimeSlot struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Village     string               `gorm:"type:text;not null;index;uniqueIndex:idx_time_slots_window"`
	Date        time.Time            `gorm:"type:date;not null;uniqueIndex:idx_time_slots_window"`
	StartTime   string               `gorm:"column:start_time;type:text;not null;uniqueIndex:idx_time_slots_window"`
	EndTime     string               `gorm:"column:end_time;type:text;not null;uniqueIndex:idx_time_slots_window"`
	Capacity    int                  `gorm:"not null;default:50"`
	BookedCount int                  `gorm:"column:booked_count;not null;default:0"`
	Status      enums.TimeSlotStatus `gorm:"type:text;not null;default:active"`
	CreatedBy   uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *TimeSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// HasRoom reports whether another booking fits under the configured capacity.
func (s *TimeSlot) HasRoom() bool {
	return s.BookedCount < s.Capacity
}
