package timeslots

import (
	"time"

	"github.com/google/uuid"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

// CreateSlotRequest opens a collection window for a village. Capacity of
// zero falls back to the default of 50.
type CreateSlotRequest struct {
	Village   string `json:"village" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Capacity  int    `json:"capacity" validate:"gte=0"`
}

// UpdateSlotRequest adjusts an existing window. Nil fields stay unchanged.
type UpdateSlotRequest struct {
	StartTime *string               `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime   *string               `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Capacity  *int                  `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Status    *enums.TimeSlotStatus `json:"status,omitempty"`
}

// BookSlotRequest books the calling user into a slot.
type BookSlotRequest struct {
	SlotID uuid.UUID `json:"slot_id" validate:"required"`
}

// AssignRequest books a user into a slot on their behalf.
type AssignRequest struct {
	SlotID uuid.UUID `json:"slot_id" validate:"required"`
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// RemoveRequest cancels a user's booking on their behalf.
type RemoveRequest struct {
	SlotID uuid.UUID `json:"slot_id" validate:"required"`
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// TimeSlotDTO is the transport shape for a collection window.
type TimeSlotDTO struct {
	ID          uuid.UUID            `json:"id"`
	Village     string               `json:"village"`
	Date        string               `json:"date"`
	StartTime   string               `json:"start_time"`
	EndTime     string               `json:"end_time"`
	Capacity    int                  `json:"capacity"`
	BookedCount int                  `json:"booked_count"`
	Status      enums.TimeSlotStatus `json:"status"`
	CreatedBy   uuid.UUID            `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// BookingDTO is the transport shape for a user's slot booking.
type BookingDTO struct {
	ID        uuid.UUID           `json:"id"`
	SlotID    uuid.UUID           `json:"slot_id"`
	UserID    uuid.UUID           `json:"user_id"`
	Status    enums.BookingStatus `json:"status"`
	BookedBy  uuid.UUID           `json:"booked_by"`
	Slot      *TimeSlotDTO        `json:"slot,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

func FromModel(s *models.TimeSlot) *TimeSlotDTO {
	if s == nil {
		return nil
	}

	return &TimeSlotDTO{
		ID:          s.ID,
		Village:     s.Village,
		Date:        s.Date.Format(dateLayout),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Capacity:    s.Capacity,
		BookedCount: s.BookedCount,
		Status:      s.Status,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func FromModels(slotModels []models.TimeSlot) []*TimeSlotDTO {
	out := make([]*TimeSlotDTO, 0, len(slotModels))
	for i := range slotModels {
		out = append(out, FromModel(&slotModels[i]))
	}
	return out
}

func BookingFromModel(b *models.Booking) *BookingDTO {
	if b == nil {
		return nil
	}

	return &BookingDTO{
		ID:        b.ID,
		SlotID:    b.SlotID,
		UserID:    b.UserID,
		Status:    b.Status,
		BookedBy:  b.BookedBy,
		Slot:      FromModel(b.Slot),
		CreatedAt: b.CreatedAt,
	}
}
