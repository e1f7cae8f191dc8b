package timeslots

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/internal/users"
	"github.com/rationsetu/rationsetu-backend/pkg/db"
	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

const defaultCapacity = 50

// Actor identifies who is operating on slots and bookings.
type Actor struct {
	ID      uuid.UUID
	Role    enums.UserRole
	Village string
}

// Service defines the slot scheduling and booking operations.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateSlotRequest) (*TimeSlotDTO, error)
	Update(ctx context.Context, actor Actor, slotID uuid.UUID, req UpdateSlotRequest) (*TimeSlotDTO, error)
	Delete(ctx context.Context, actor Actor, slotID uuid.UUID) error
	ListAll(ctx context.Context, actor Actor) ([]*TimeSlotDTO, error)
	ListVillage(ctx context.Context, village string) ([]*TimeSlotDTO, error)
	ListAvailable(ctx context.Context, village string) ([]*TimeSlotDTO, error)
	Book(ctx context.Context, actor Actor, req BookSlotRequest) (*BookingDTO, error)
	Cancel(ctx context.Context, actor Actor) error
	Assign(ctx context.Context, actor Actor, req AssignRequest) (*BookingDTO, error)
	Remove(ctx context.Context, actor Actor, req RemoveRequest) error
	UserBooking(ctx context.Context, userID uuid.UUID) (*BookingDTO, error)
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	db  *db.Client
	now func() time.Time
}

// NewService constructs a timeslots service over the database client.
func NewService(client *db.Client) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	return &service{db: client, now: time.Now}, nil
}

// Create opens a new window. Village admins may only open windows in their
// own village; a duplicate window for the same village is rejected.
func (s *service) Create(ctx context.Context, actor Actor, req CreateSlotRequest) (*TimeSlotDTO, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	if req.StartTime >= req.EndTime {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_time must be before end_time")
	}
	if date.Before(today(s.now())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date cannot be in the past")
	}
	if actor.Role == enums.UserRoleVillageAdmin && req.Village != actor.Village {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot create slots outside your village")
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}

	slot := &models.TimeSlot{
		Village:   req.Village,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  capacity,
		Status:    enums.TimeSlotStatusActive,
		CreatedBy: actor.ID,
	}
	if err := NewRepository(s.db.DB()).Create(ctx, slot); err != nil {
		if db.IsUniqueViolation(err, "idx_time_slots_window") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a slot already exists for this window")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create slot")
	}
	return FromModel(slot), nil
}

// Update adjusts a window. Capacity can never drop below the seats already
// taken.
func (s *service) Update(ctx context.Context, actor Actor, slotID uuid.UUID, req UpdateSlotRequest) (*TimeSlotDTO, error) {
	repo := NewRepository(s.db.DB())

	slot, err := s.loadScopedSlot(ctx, repo, actor, slotID)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if slot.StartTime >= slot.EndTime {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_time must be before end_time")
	}
	if req.Capacity != nil {
		if *req.Capacity < slot.BookedCount {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot drop below booked seats")
		}
		slot.Capacity = *req.Capacity
		if slot.Status == enums.TimeSlotStatusFull && slot.BookedCount < slot.Capacity {
			slot.Status = enums.TimeSlotStatusActive
		}
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid slot status")
		}
		slot.Status = *req.Status
	}

	if err := repo.Save(ctx, slot); err != nil {
		if db.IsUniqueViolation(err, "idx_time_slots_window") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a slot already exists for this window")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save slot")
	}
	return FromModel(slot), nil
}

// Delete removes a window that nobody is booked into.
func (s *service) Delete(ctx context.Context, actor Actor, slotID uuid.UUID) error {
	repo := NewRepository(s.db.DB())

	slot, err := s.loadScopedSlot(ctx, repo, actor, slotID)
	if err != nil {
		return err
	}

	count, err := repo.CountActiveBookings(ctx, slot.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count bookings")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "slot has active bookings")
	}
	if err := repo.Delete(ctx, slot.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete slot")
	}
	return nil
}

// ListAll returns every slot for admins and the actor's village for
// village admins.
func (s *service) ListAll(ctx context.Context, actor Actor) ([]*TimeSlotDTO, error) {
	repo := NewRepository(s.db.DB())

	if actor.Role == enums.UserRoleVillageAdmin {
		rows, err := repo.ListByVillage(ctx, actor.Village)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list slots")
		}
		return FromModels(rows), nil
	}

	rows, err := repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list slots")
	}
	return FromModels(rows), nil
}

func (s *service) ListVillage(ctx context.Context, village string) ([]*TimeSlotDTO, error) {
	if village == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "village is required")
	}
	rows, err := NewRepository(s.db.DB()).ListByVillage(ctx, village)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list village slots")
	}
	return FromModels(rows), nil
}

func (s *service) ListAvailable(ctx context.Context, village string) ([]*TimeSlotDTO, error) {
	if village == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "village is required")
	}
	rows, err := NewRepository(s.db.DB()).ListAvailable(ctx, village, today(s.now()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list available slots")
	}
	return FromModels(rows), nil
}

// Book takes a seat for the calling user. A user can hold only one live
// booking at a time, and the seat count flips the slot to full exactly at
// capacity.
func (s *service) Book(ctx context.Context, actor Actor, req BookSlotRequest) (*BookingDTO, error) {
	var result *BookingDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookInTx(ctx, tx, actor.ID, actor.Village, req.SlotID, actor.ID)
		if err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel releases the calling user's current booking, reopening the slot
// when it was full. The booking is resolved from the user, so the caller
// does not name a slot.
func (s *service) Cancel(ctx context.Context, actor Actor) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		booking, err := repo.FindActiveBookingForUser(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "no active booking found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup booking")
		}
		return s.releaseBooking(ctx, repo, booking)
	})
}

// Assign books a user into a slot on their behalf, releasing any earlier
// live booking first.
func (s *service) Assign(ctx context.Context, actor Actor, req AssignRequest) (*BookingDTO, error) {
	var result *BookingDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		target, err := users.NewRepository(tx).FindByID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		if target.Role != enums.UserRoleUser {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if actor.Role == enums.UserRoleVillageAdmin && target.Village != actor.Village {
			return pkgerrors.New(pkgerrors.CodeForbidden, "user is outside your village")
		}

		if prior, err := repo.FindActiveBookingForUser(ctx, target.ID); err == nil {
			if err := s.releaseBooking(ctx, repo, prior); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing booking")
		}

		booking, err := s.bookInTx(ctx, tx, target.ID, target.Village, req.SlotID, actor.ID)
		if err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Remove cancels a user's booking on their behalf.
func (s *service) Remove(ctx context.Context, actor Actor, req RemoveRequest) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		target, err := users.NewRepository(tx).FindByID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		if actor.Role == enums.UserRoleVillageAdmin && target.Village != actor.Village {
			return pkgerrors.New(pkgerrors.CodeForbidden, "user is outside your village")
		}
		return s.cancelInTx(ctx, tx, target.ID, req.SlotID)
	})
}

// UserBooking returns the user's current live booking with its slot.
func (s *service) UserBooking(ctx context.Context, userID uuid.UUID) (*BookingDTO, error) {
	booking, err := NewRepository(s.db.DB()).FindActiveBookingForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active booking")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
	}
	return BookingFromModel(booking), nil
}

// CompleteExpired closes every slot whose date has passed. Meant to run
// from the scheduler.
func (s *service) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	closed, err := NewRepository(s.db.DB()).MarkExpiredComplete(ctx, today(now))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close expired slots")
	}
	return closed, nil
}

func (s *service) bookInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, userVillage string, slotID, bookedBy uuid.UUID) (*BookingDTO, error) {
	repo := NewRepository(tx)

	slot, err := repo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "slot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup slot")
	}
	if slot.Village != userVillage {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "slot is outside the user's village")
	}
	if slot.Date.Before(today(s.now())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slot date has passed")
	}
	switch slot.Status {
	case enums.TimeSlotStatusActive:
	case enums.TimeSlotStatusFull:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "slot is full")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "slot is not active")
	}

	if _, err := repo.FindActiveBookingForUser(ctx, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already holds an active booking")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing booking")
	}

	touched, err := repo.IncrementBooked(ctx, slot.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "take seat")
	}
	if touched == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "slot is full")
	}

	booking := &models.Booking{
		SlotID:   slot.ID,
		UserID:   userID,
		Status:   enums.BookingStatusBooked,
		BookedBy: bookedBy,
	}
	if err := repo.CreateBooking(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking")
	}

	slot, err = repo.FindByID(ctx, slot.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload slot")
	}
	booking.Slot = slot
	return BookingFromModel(booking), nil
}

func (s *service) cancelInTx(ctx context.Context, tx *gorm.DB, userID, slotID uuid.UUID) error {
	repo := NewRepository(tx)

	booking, err := repo.FindActiveBookingForSlot(ctx, userID, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup booking")
	}
	return s.releaseBooking(ctx, repo, booking)
}

func (s *service) releaseBooking(ctx context.Context, repo *Repository, booking *models.Booking) error {
	if err := repo.UpdateBookingStatus(ctx, booking.ID, enums.BookingStatusCancelled); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel booking")
	}
	if _, err := repo.DecrementBooked(ctx, booking.SlotID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release seat")
	}
	return nil
}

func (s *service) loadScopedSlot(ctx context.Context, repo *Repository, actor Actor, slotID uuid.UUID) (*models.TimeSlot, error) {
	slot, err := repo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "slot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup slot")
	}
	if actor.Role == enums.UserRoleVillageAdmin && slot.Village != actor.Village {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "slot is outside your village")
	}
	return slot, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
