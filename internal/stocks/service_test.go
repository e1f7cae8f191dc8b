package stocks

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	gdb := newTestDB(t)
	svc, err := NewService(NewRepository(gdb))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, gdb
}

func TestCreateOrRestockCreatesNewRow(t *testing.T) {
	svc, gdb := newTestService(t)
	adminID := uuid.New()

	created, err := svc.CreateOrRestock(context.Background(), CreateStockRequest{
		Item:     "Rice",
		Quantity: 100,
		Unit:     "kg",
		Price:    decimal.NewFromInt(3),
	}, adminID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Quantity != 100 || created.CreatedBy != adminID {
		t.Fatalf("unexpected stock %+v", created)
	}

	var count int64
	gdb.Model(&models.Stock{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestCreateOrRestockTopsUpExactMatch(t *testing.T) {
	svc, gdb := newTestService(t)
	adminID := uuid.New()

	req := CreateStockRequest{Item: "Rice", Quantity: 100, Unit: "kg", Price: decimal.NewFromInt(3)}
	if _, err := svc.CreateOrRestock(context.Background(), req, adminID); err != nil {
		t.Fatalf("first create: %v", err)
	}

	req.Quantity = 50
	restocked, err := svc.CreateOrRestock(context.Background(), req, adminID)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if restocked.Quantity != 150 {
		t.Fatalf("expected 150 after restock, got %d", restocked.Quantity)
	}

	var count int64
	gdb.Model(&models.Stock{}).Count(&count)
	if count != 1 {
		t.Fatalf("restock forked a second row, count=%d", count)
	}
}

func TestCreateOrRestockForksOnDifferentPrice(t *testing.T) {
	svc, gdb := newTestService(t)
	adminID := uuid.New()

	req := CreateStockRequest{Item: "Rice", Quantity: 100, Unit: "kg", Price: decimal.NewFromInt(3)}
	if _, err := svc.CreateOrRestock(context.Background(), req, adminID); err != nil {
		t.Fatalf("first create: %v", err)
	}

	req.Price = decimal.NewFromInt(4)
	if _, err := svc.CreateOrRestock(context.Background(), req, adminID); err != nil {
		t.Fatalf("second create: %v", err)
	}

	var count int64
	gdb.Model(&models.Stock{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected separate rows per price, count=%d", count)
	}
}

func TestUpdateStockOverwritesQuantity(t *testing.T) {
	svc, _ := newTestService(t)
	adminID := uuid.New()

	created, err := svc.CreateOrRestock(context.Background(), CreateStockRequest{
		Item: "Wheat", Quantity: 40, Unit: "kg", Price: decimal.NewFromInt(2),
	}, adminID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := decimal.RequireFromString("2.50")
	updated, err := svc.UpdateStock(context.Background(), created.ID, UpdateStockRequest{
		Quantity: 10,
		Price:    &price,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 10 || !updated.Price.Equal(price) {
		t.Fatalf("unexpected stock after update %+v", updated)
	}
}

func TestUpdateStockUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateStock(context.Background(), uuid.New(), UpdateStockRequest{Quantity: 5})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogAggregatesByItemAndUnit(t *testing.T) {
	svc, _ := newTestService(t)
	adminID := uuid.New()

	inputs := []CreateStockRequest{
		{Item: "Rice", Quantity: 100, Unit: "kg", Price: decimal.NewFromInt(3)},
		{Item: "Rice", Quantity: 50, Unit: "kg", Price: decimal.NewFromInt(4)},
		{Item: "Oil", Quantity: 20, Unit: "litre", Price: decimal.NewFromInt(90)},
	}
	for _, in := range inputs {
		if _, err := svc.CreateOrRestock(context.Background(), in, adminID); err != nil {
			t.Fatalf("seed %s: %v", in.Item, err)
		}
	}

	catalog, err := svc.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 catalog entries, got %d", len(catalog))
	}
	byItem := map[string]int{}
	for _, entry := range catalog {
		byItem[entry.Item] = entry.TotalQuantity
	}
	if byItem["Rice"] != 150 || byItem["Oil"] != 20 {
		t.Fatalf("unexpected catalog totals %+v", byItem)
	}
}

func TestCreateOrRestockValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateOrRestock(context.Background(), CreateStockRequest{
		Item: " ", Quantity: 10, Unit: "kg",
	}, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.CreateOrRestock(context.Background(), CreateStockRequest{
		Item: "Rice", Quantity: 0, Unit: "kg",
	}, uuid.New())
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}
