package timeslots

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rationsetu/rationsetu-backend/pkg/config"
	"github.com/rationsetu/rationsetu-backend/pkg/db"
	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()

	client := newTestClient(t)
	svc, err := NewService(client)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, client
}

func seedUser(t *testing.T, client *db.Client, email, village string, role enums.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:         strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: "x",
		Village:      village,
		Role:         role,
		IsActive:     true,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func tomorrow() string {
	return time.Now().UTC().AddDate(0, 0, 1).Format(dateLayout)
}

func createSlot(t *testing.T, svc Service, actor Actor, village string, capacity int) *TimeSlotDTO {
	t.Helper()

	slot, err := svc.Create(context.Background(), actor, CreateSlotRequest{
		Village:   village,
		Date:      tomorrow(),
		StartTime: "09:00",
		EndTime:   "11:00",
		Capacity:  capacity,
	})
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func loadSlot(t *testing.T, client *db.Client, id uuid.UUID) *models.TimeSlot {
	t.Helper()

	var slot models.TimeSlot
	if err := client.DB().First(&slot, "id = ?", id).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	return &slot
}

func adminActor(id uuid.UUID) Actor {
	return Actor{ID: id, Role: enums.UserRoleAdmin}
}

func userActor(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Village: u.Village}
}

func TestCreateSlotDefaultsCapacity(t *testing.T) {
	svc, _ := newTestService(t)

	slot := createSlot(t, svc, adminActor(uuid.New()), "Rampur", 0)
	if slot.Capacity != 50 {
		t.Fatalf("expected default capacity 50, got %d", slot.Capacity)
	}
	if slot.Status != enums.TimeSlotStatusActive {
		t.Fatalf("expected active status, got %s", slot.Status)
	}
}

func TestCreateSlotRejectsDuplicateWindow(t *testing.T) {
	svc, _ := newTestService(t)
	actor := adminActor(uuid.New())

	createSlot(t, svc, actor, "Rampur", 10)
	_, err := svc.Create(context.Background(), actor, CreateSlotRequest{
		Village:   "Rampur",
		Date:      tomorrow(),
		StartTime: "09:00",
		EndTime:   "11:00",
		Capacity:  10,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateSlotRejectsPastDate(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), adminActor(uuid.New()), CreateSlotRequest{
		Village:   "Rampur",
		Date:      time.Now().UTC().AddDate(0, 0, -1).Format(dateLayout),
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVillageAdminCannotCreateOutsideVillage(t *testing.T) {
	svc, client := newTestService(t)
	va := seedUser(t, client, "va@example.com", "Rampur", enums.UserRoleVillageAdmin)

	_, err := svc.Create(context.Background(), userActor(va), CreateSlotRequest{
		Village:   "Sitapur",
		Date:      tomorrow(),
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

// Two seats fill, the third booking is refused, and one cancellation
// reopens the slot.
func TestBookingCapacityLifecycle(t *testing.T) {
	svc, client := newTestService(t)

	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	u2 := seedUser(t, client, "u2@example.com", "Rampur", enums.UserRoleUser)
	u3 := seedUser(t, client, "u3@example.com", "Rampur", enums.UserRoleUser)
	slot := createSlot(t, svc, adminActor(uuid.New()), "Rampur", 2)

	if _, err := svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: slot.ID}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	stored := loadSlot(t, client, slot.ID)
	if stored.BookedCount != 1 || stored.Status != enums.TimeSlotStatusActive {
		t.Fatalf("after first booking: count=%d status=%s", stored.BookedCount, stored.Status)
	}

	if _, err := svc.Book(context.Background(), userActor(u2), BookSlotRequest{SlotID: slot.ID}); err != nil {
		t.Fatalf("second booking: %v", err)
	}
	stored = loadSlot(t, client, slot.ID)
	if stored.BookedCount != 2 || stored.Status != enums.TimeSlotStatusFull {
		t.Fatalf("slot should flip to full at capacity: count=%d status=%s", stored.BookedCount, stored.Status)
	}

	_, err := svc.Book(context.Background(), userActor(u3), BookSlotRequest{SlotID: slot.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on full slot, got %v", err)
	}

	if err := svc.Cancel(context.Background(), userActor(u1)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	stored = loadSlot(t, client, slot.ID)
	if stored.BookedCount != 1 || stored.Status != enums.TimeSlotStatusActive {
		t.Fatalf("cancel should reopen slot: count=%d status=%s", stored.BookedCount, stored.Status)
	}

	if _, err := svc.Book(context.Background(), userActor(u3), BookSlotRequest{SlotID: slot.ID}); err != nil {
		t.Fatalf("booking after reopen: %v", err)
	}
}

func TestUserHoldsSingleActiveBooking(t *testing.T) {
	svc, client := newTestService(t)

	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	admin := adminActor(uuid.New())
	slotA := createSlot(t, svc, admin, "Rampur", 5)

	second, err := svc.Create(context.Background(), admin, CreateSlotRequest{
		Village:   "Rampur",
		Date:      tomorrow(),
		StartTime: "12:00",
		EndTime:   "14:00",
		Capacity:  5,
	})
	if err != nil {
		t.Fatalf("create second slot: %v", err)
	}

	if _, err := svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: slotA.ID}); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err = svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: second.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on second live booking, got %v", err)
	}
}

func TestCancelResolvesBookingWithoutSlotArgument(t *testing.T) {
	svc, client := newTestService(t)

	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	admin := adminActor(uuid.New())
	slot := createSlot(t, svc, admin, "Rampur", 2)

	if _, err := svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: slot.ID}); err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.Cancel(context.Background(), userActor(u1)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	stored := loadSlot(t, client, slot.ID)
	if stored.BookedCount != 0 {
		t.Fatalf("seat not released: count=%d", stored.BookedCount)
	}

	err := svc.Cancel(context.Background(), userActor(u1))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without an active booking, got %v", err)
	}
	if typed.Message() != "no active booking found" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestBookRejectsInactiveSlot(t *testing.T) {
	svc, client := newTestService(t)

	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	slot := createSlot(t, svc, adminActor(uuid.New()), "Rampur", 5)

	if err := client.DB().Model(&models.TimeSlot{}).
		Where("id = ?", slot.ID).
		Update("status", enums.TimeSlotStatusCancelled).Error; err != nil {
		t.Fatalf("deactivate slot: %v", err)
	}

	_, err := svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: slot.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on inactive slot, got %v", err)
	}
}

func TestAssignRejectsNonUserTarget(t *testing.T) {
	svc, client := newTestService(t)

	va := seedUser(t, client, "va@example.com", "Rampur", enums.UserRoleVillageAdmin)
	slot := createSlot(t, svc, adminActor(uuid.New()), "Rampur", 5)

	_, err := svc.Assign(context.Background(), adminActor(uuid.New()), AssignRequest{
		SlotID: slot.ID, UserID: va.ID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for non-user target, got %v", err)
	}
}

func TestBookRejectsOutsideVillage(t *testing.T) {
	svc, client := newTestService(t)

	outsider := seedUser(t, client, "out@example.com", "Sitapur", enums.UserRoleUser)
	slot := createSlot(t, svc, adminActor(uuid.New()), "Rampur", 5)

	_, err := svc.Book(context.Background(), userActor(outsider), BookSlotRequest{SlotID: slot.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAssignReleasesPriorBooking(t *testing.T) {
	svc, client := newTestService(t)

	va := seedUser(t, client, "va@example.com", "Rampur", enums.UserRoleVillageAdmin)
	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	admin := adminActor(uuid.New())
	slotA := createSlot(t, svc, admin, "Rampur", 5)

	slotB, err := svc.Create(context.Background(), admin, CreateSlotRequest{
		Village:   "Rampur",
		Date:      tomorrow(),
		StartTime: "12:00",
		EndTime:   "14:00",
		Capacity:  5,
	})
	if err != nil {
		t.Fatalf("create second slot: %v", err)
	}

	if _, err := svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: slotA.ID}); err != nil {
		t.Fatalf("initial booking: %v", err)
	}

	booking, err := svc.Assign(context.Background(), userActor(va), AssignRequest{SlotID: slotB.ID, UserID: u1.ID})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if booking.SlotID != slotB.ID || booking.BookedBy != va.ID {
		t.Fatalf("unexpected booking %+v", booking)
	}

	if got := loadSlot(t, client, slotA.ID); got.BookedCount != 0 {
		t.Fatalf("prior slot seat not released: %d", got.BookedCount)
	}
	if got := loadSlot(t, client, slotB.ID); got.BookedCount != 1 {
		t.Fatalf("new slot seat not taken: %d", got.BookedCount)
	}

	current, err := svc.UserBooking(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("user booking: %v", err)
	}
	if current.SlotID != slotB.ID {
		t.Fatalf("expected live booking on new slot, got %s", current.SlotID)
	}
}

func TestAssignOutsideVillageForbidden(t *testing.T) {
	svc, client := newTestService(t)

	va := seedUser(t, client, "va@example.com", "Rampur", enums.UserRoleVillageAdmin)
	outsider := seedUser(t, client, "out@example.com", "Sitapur", enums.UserRoleUser)
	slot := createSlot(t, svc, adminActor(uuid.New()), "Sitapur", 5)

	_, err := svc.Assign(context.Background(), userActor(va), AssignRequest{SlotID: slot.ID, UserID: outsider.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateSlotCapacityBelowBookedRejected(t *testing.T) {
	svc, client := newTestService(t)

	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	u2 := seedUser(t, client, "u2@example.com", "Rampur", enums.UserRoleUser)
	admin := adminActor(uuid.New())
	slot := createSlot(t, svc, admin, "Rampur", 5)

	for _, u := range []*models.User{u1, u2} {
		if _, err := svc.Book(context.Background(), userActor(u), BookSlotRequest{SlotID: slot.ID}); err != nil {
			t.Fatalf("book %s: %v", u.Email, err)
		}
	}

	one := 1
	_, err := svc.Update(context.Background(), admin, slot.ID, UpdateSlotRequest{Capacity: &one})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteSlotGuardedByBookings(t *testing.T) {
	svc, client := newTestService(t)

	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	admin := adminActor(uuid.New())
	slot := createSlot(t, svc, admin, "Rampur", 5)

	if _, err := svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: slot.ID}); err != nil {
		t.Fatalf("book: %v", err)
	}

	err := svc.Delete(context.Background(), admin, slot.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := svc.Cancel(context.Background(), userActor(u1)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.Delete(context.Background(), admin, slot.ID); err != nil {
		t.Fatalf("delete after cancel: %v", err)
	}
}

func TestListAvailableExcludesFullSlots(t *testing.T) {
	svc, client := newTestService(t)

	u1 := seedUser(t, client, "u1@example.com", "Rampur", enums.UserRoleUser)
	admin := adminActor(uuid.New())
	slot := createSlot(t, svc, admin, "Rampur", 1)

	available, err := svc.ListAvailable(context.Background(), "Rampur")
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("expected 1 available slot, got %d", len(available))
	}

	if _, err := svc.Book(context.Background(), userActor(u1), BookSlotRequest{SlotID: slot.ID}); err != nil {
		t.Fatalf("book: %v", err)
	}

	available, err = svc.ListAvailable(context.Background(), "Rampur")
	if err != nil {
		t.Fatalf("list available after fill: %v", err)
	}
	if len(available) != 0 {
		t.Fatalf("full slot should not be listed, got %d", len(available))
	}
}

func TestCompleteExpiredClosesPastSlots(t *testing.T) {
	svc, client := newTestService(t)

	past := &models.TimeSlot{
		Village:   "Rampur",
		Date:      time.Now().UTC().AddDate(0, 0, -2),
		StartTime: "09:00",
		EndTime:   "11:00",
		Capacity:  5,
		Status:    enums.TimeSlotStatusActive,
		CreatedBy: uuid.New(),
	}
	if err := client.DB().Create(past).Error; err != nil {
		t.Fatalf("seed past slot: %v", err)
	}
	future := createSlot(t, svc, adminActor(uuid.New()), "Rampur", 5)

	closed, err := svc.CompleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("complete expired: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 slot closed, got %d", closed)
	}

	if got := loadSlot(t, client, past.ID); got.Status != enums.TimeSlotStatusCompleted {
		t.Fatalf("past slot not completed: %s", got.Status)
	}
	if got := loadSlot(t, client, future.ID); got.Status != enums.TimeSlotStatusActive {
		t.Fatalf("future slot should stay active: %s", got.Status)
	}
}
