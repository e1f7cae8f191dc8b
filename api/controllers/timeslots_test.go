package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rationsetu/rationsetu-backend/internal/timeslots"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

type testTimeSlotsService struct {
	createFn        func(ctx context.Context, actor timeslots.Actor, req timeslots.CreateSlotRequest) (*timeslots.TimeSlotDTO, error)
	updateFn        func(ctx context.Context, actor timeslots.Actor, slotID uuid.UUID, req timeslots.UpdateSlotRequest) (*timeslots.TimeSlotDTO, error)
	deleteFn        func(ctx context.Context, actor timeslots.Actor, slotID uuid.UUID) error
	listAllFn       func(ctx context.Context, actor timeslots.Actor) ([]*timeslots.TimeSlotDTO, error)
	listAvailableFn func(ctx context.Context, village string) ([]*timeslots.TimeSlotDTO, error)
	bookFn          func(ctx context.Context, actor timeslots.Actor, req timeslots.BookSlotRequest) (*timeslots.BookingDTO, error)
	cancelFn        func(ctx context.Context, actor timeslots.Actor) error
	assignFn        func(ctx context.Context, actor timeslots.Actor, req timeslots.AssignRequest) (*timeslots.BookingDTO, error)
	userBookingFn   func(ctx context.Context, userID uuid.UUID) (*timeslots.BookingDTO, error)
}

func (s *testTimeSlotsService) Create(ctx context.Context, actor timeslots.Actor, req timeslots.CreateSlotRequest) (*timeslots.TimeSlotDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, actor, req)
	}
	return nil, nil
}

func (s *testTimeSlotsService) Update(ctx context.Context, actor timeslots.Actor, slotID uuid.UUID, req timeslots.UpdateSlotRequest) (*timeslots.TimeSlotDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, actor, slotID, req)
	}
	return nil, nil
}

func (s *testTimeSlotsService) Delete(ctx context.Context, actor timeslots.Actor, slotID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, actor, slotID)
	}
	return nil
}

func (s *testTimeSlotsService) ListAll(ctx context.Context, actor timeslots.Actor) ([]*timeslots.TimeSlotDTO, error) {
	if s.listAllFn != nil {
		return s.listAllFn(ctx, actor)
	}
	return nil, nil
}

func (s *testTimeSlotsService) ListVillage(ctx context.Context, village string) ([]*timeslots.TimeSlotDTO, error) {
	return nil, nil
}

func (s *testTimeSlotsService) ListAvailable(ctx context.Context, village string) ([]*timeslots.TimeSlotDTO, error) {
	if s.listAvailableFn != nil {
		return s.listAvailableFn(ctx, village)
	}
	return nil, nil
}

func (s *testTimeSlotsService) Book(ctx context.Context, actor timeslots.Actor, req timeslots.BookSlotRequest) (*timeslots.BookingDTO, error) {
	if s.bookFn != nil {
		return s.bookFn(ctx, actor, req)
	}
	return nil, nil
}

func (s *testTimeSlotsService) Cancel(ctx context.Context, actor timeslots.Actor) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, actor)
	}
	return nil
}

func (s *testTimeSlotsService) Assign(ctx context.Context, actor timeslots.Actor, req timeslots.AssignRequest) (*timeslots.BookingDTO, error) {
	if s.assignFn != nil {
		return s.assignFn(ctx, actor, req)
	}
	return nil, nil
}

func (s *testTimeSlotsService) Remove(ctx context.Context, actor timeslots.Actor, req timeslots.RemoveRequest) error {
	return nil
}

func (s *testTimeSlotsService) UserBooking(ctx context.Context, userID uuid.UUID) (*timeslots.BookingDTO, error) {
	if s.userBookingFn != nil {
		return s.userBookingFn(ctx, userID)
	}
	return nil, nil
}

func (s *testTimeSlotsService) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func TestCreateTimeSlotPassesActor(t *testing.T) {
	adminID := uuid.New()
	called := false
	svc := &testTimeSlotsService{
		createFn: func(ctx context.Context, actor timeslots.Actor, req timeslots.CreateSlotRequest) (*timeslots.TimeSlotDTO, error) {
			called = true
			if actor.ID != adminID || actor.Role != enums.UserRoleVillageAdmin || actor.Village != "Rampur" {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if req.Village != "Rampur" || req.StartTime != "09:00" {
				t.Fatalf("unexpected payload %+v", req)
			}
			return &timeslots.TimeSlotDTO{ID: uuid.New(), Village: req.Village}, nil
		},
	}

	body := `{"village":"Rampur","date":"2026-09-10","start_time":"09:00","end_time":"11:00","capacity":30}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeslots/create", strings.NewReader(body))
	req = withActor(req, adminID, enums.UserRoleVillageAdmin, "Rampur")
	resp := httptest.NewRecorder()
	CreateTimeSlot(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestCreateTimeSlotRejectsBadDate(t *testing.T) {
	body := `{"village":"Rampur","date":"10-09-2026","start_time":"09:00","end_time":"11:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeslots/create", strings.NewReader(body))
	req = withActor(req, uuid.New(), enums.UserRoleAdmin, "")
	resp := httptest.NewRecorder()
	CreateTimeSlot(&testTimeSlotsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookTimeSlotFullSlotConflict(t *testing.T) {
	svc := &testTimeSlotsService{
		bookFn: func(ctx context.Context, actor timeslots.Actor, req timeslots.BookSlotRequest) (*timeslots.BookingDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slot is full or no longer active")
		},
	}

	body := `{"slot_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeslots/book", strings.NewReader(body))
	req = withActor(req, uuid.New(), enums.UserRoleUser, "Rampur")
	resp := httptest.NewRecorder()
	BookTimeSlot(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestMyTimeSlotBookingReturnsEnvelope(t *testing.T) {
	userID := uuid.New()
	slotID := uuid.New()
	svc := &testTimeSlotsService{
		userBookingFn: func(ctx context.Context, id uuid.UUID) (*timeslots.BookingDTO, error) {
			if id != userID {
				t.Fatalf("unexpected user %s", id)
			}
			return &timeslots.BookingDTO{ID: uuid.New(), SlotID: slotID, UserID: userID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timeslots/my-booking", nil)
	req = withActor(req, userID, enums.UserRoleUser, "Rampur")
	resp := httptest.NewRecorder()
	MyTimeSlotBooking(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data timeslots.BookingDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.SlotID != slotID {
		t.Fatalf("unexpected booking %+v", envelope.Data)
	}
}

func TestDeleteTimeSlotWithBookingsConflict(t *testing.T) {
	slotID := uuid.New()
	svc := &testTimeSlotsService{
		deleteFn: func(ctx context.Context, actor timeslots.Actor, id uuid.UUID) error {
			if id != slotID {
				t.Fatalf("unexpected slot %s", id)
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "slot has active bookings")
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/timeslots/"+slotID.String(), nil)
	req = withActor(req, uuid.New(), enums.UserRoleAdmin, "")
	req = addRouteParam(req, "slotId", slotID.String())
	resp := httptest.NewRecorder()
	DeleteTimeSlot(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCancelTimeSlotBookingTakesNoBody(t *testing.T) {
	userID := uuid.New()
	var got timeslots.Actor
	svc := &testTimeSlotsService{
		cancelFn: func(ctx context.Context, actor timeslots.Actor) error {
			got = actor
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeslots/cancel", nil)
	req = withActor(req, userID, enums.UserRoleUser, "Rampur")
	resp := httptest.NewRecorder()
	CancelTimeSlotBooking(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.ID != userID {
		t.Fatalf("expected caller %s, got %s", userID, got.ID)
	}
}

func TestCancelTimeSlotBookingWithoutActiveBooking(t *testing.T) {
	svc := &testTimeSlotsService{
		cancelFn: func(ctx context.Context, actor timeslots.Actor) error {
			return pkgerrors.New(pkgerrors.CodeValidation, "no active booking found")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeslots/cancel", nil)
	req = withActor(req, uuid.New(), enums.UserRoleUser, "Rampur")
	resp := httptest.NewRecorder()
	CancelTimeSlotBooking(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListAvailableTimeSlotsUsesCallerVillage(t *testing.T) {
	var got string
	svc := &testTimeSlotsService{
		listAvailableFn: func(ctx context.Context, village string) ([]*timeslots.TimeSlotDTO, error) {
			got = village
			return []*timeslots.TimeSlotDTO{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timeslots/available", nil)
	req = withActor(req, uuid.New(), enums.UserRoleUser, "Rampur")
	resp := httptest.NewRecorder()
	ListAvailableTimeSlots(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got != "Rampur" {
		t.Fatalf("expected village Rampur got %q", got)
	}
}
