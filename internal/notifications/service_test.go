package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	pkgerrors "github.com/rationsetu/rationsetu-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	gdb := newTestDB(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(gdb)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, gdb
}

func TestCreateAndGetNotification(t *testing.T) {
	svc, _ := newTestService(t)
	adminID := uuid.New()

	created, err := svc.Create(context.Background(), adminID, CreateNotificationRequest{
		Title:   "Distribution day",
		Message: "Rice distribution starts Monday",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedBy != adminID {
		t.Fatalf("unexpected creator %s", created.CreatedBy)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Distribution day" {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), CreateNotificationRequest{Title: " ", Message: "m"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListNotificationsPaginates(t *testing.T) {
	svc, gdb := newTestService(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		n := &models.Notification{
			Title:     fmt.Sprintf("n%d", i),
			Message:   "m",
			CreatedBy: uuid.New(),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := gdb.Create(n).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	first, err := svc.List(context.Background(), ListParams{Limit: 3})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 3 || first.Cursor == "" {
		t.Fatalf("expected full first page with cursor, got %d items cursor=%q", len(first.Items), first.Cursor)
	}
	if first.Items[0].Title != "n4" {
		t.Fatalf("expected newest first, got %s", first.Items[0].Title)
	}

	second, err := svc.List(context.Background(), ListParams{Limit: 3, Cursor: first.Cursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 2 || second.Cursor != "" {
		t.Fatalf("expected final page of 2, got %d items cursor=%q", len(second.Items), second.Cursor)
	}
}

func TestUpdateNotification(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), uuid.New(), CreateNotificationRequest{
		Title: "Old", Message: "m",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdateNotificationRequest{
		Title: "New", Message: "m2",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "New" || updated.Message != "m2" {
		t.Fatalf("unexpected notification %+v", updated)
	}
}

func TestDeleteNotification(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), uuid.New(), CreateNotificationRequest{
		Title: "T", Message: "m",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	err = svc.Delete(context.Background(), created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
