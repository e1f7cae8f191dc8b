package timeslots

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

// Repository exposes time slot and booking persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a timeslots repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new slot row.
func (r *Repository) Create(ctx context.Context, slot *models.TimeSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

// FindByID loads a slot by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// Save persists the full slot row.
func (r *Repository) Save(ctx context.Context, slot *models.TimeSlot) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

// Delete removes a slot row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TimeSlot{}, "id = ?", id).Error
}

// List returns every slot, soonest window first.
func (r *Repository) List(ctx context.Context) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	err := r.db.WithContext(ctx).
		Order("date ASC, start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByVillage returns every slot for one village, soonest window first.
func (r *Repository) ListByVillage(ctx context.Context, village string) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	err := r.db.WithContext(ctx).
		Where("village = ?", village).
		Order("date ASC, start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAvailable returns active slots with room in one village from a
// given date forward.
func (r *Repository) ListAvailable(ctx context.Context, village string, from time.Time) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	err := r.db.WithContext(ctx).
		Where("village = ? AND status = ? AND booked_count < capacity AND date >= ?",
			village, enums.TimeSlotStatusActive, from).
		Order("date ASC, start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementBooked takes one seat while the slot is active and has room,
// flipping the status to full when the last seat goes. Returns the number
// of rows touched so callers can detect a lost race.
func (r *Repository) IncrementBooked(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ? AND status = ? AND booked_count < capacity", id, enums.TimeSlotStatusActive).
		UpdateColumns(map[string]any{
			"booked_count": gorm.Expr("booked_count + 1"),
			"status": gorm.Expr("CASE WHEN booked_count + 1 >= capacity THEN ? ELSE status END",
				enums.TimeSlotStatusFull),
		})
	return res.RowsAffected, res.Error
}

// DecrementBooked releases one seat, reopening a full slot.
func (r *Repository) DecrementBooked(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ? AND booked_count > 0", id).
		UpdateColumns(map[string]any{
			"booked_count": gorm.Expr("booked_count - 1"),
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
				enums.TimeSlotStatusFull, enums.TimeSlotStatusActive),
		})
	return res.RowsAffected, res.Error
}

// MarkExpiredComplete closes every active or full slot whose date has
// passed. Returns the number of slots closed.
func (r *Repository) MarkExpiredComplete(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("date < ? AND status IN ?", before,
			[]enums.TimeSlotStatus{enums.TimeSlotStatusActive, enums.TimeSlotStatusFull}).
		UpdateColumn("status", enums.TimeSlotStatusCompleted)
	return res.RowsAffected, res.Error
}

// CreateBooking inserts a booking row.
func (r *Repository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// FindActiveBookingForUser loads the user's single live booking, slot included.
func (r *Repository) FindActiveBookingForUser(ctx context.Context, userID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Where("user_id = ? AND status = ?", userID, enums.BookingStatusBooked).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindActiveBookingForSlot loads the user's live booking on one slot.
func (r *Repository) FindActiveBookingForSlot(ctx context.Context, userID, slotID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND slot_id = ? AND status = ?", userID, slotID, enums.BookingStatusBooked).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountActiveBookings reports the live bookings held against a slot.
func (r *Repository) CountActiveBookings(ctx context.Context, slotID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("slot_id = ? AND status = ?", slotID, enums.BookingStatusBooked).
		Count(&count).Error
	return count, err
}

// UpdateBookingStatus overwrites the status of one booking.
func (r *Repository) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status enums.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		UpdateColumn("status", status).Error
}
