package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
)

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	tenant := uuid.New()

	minimum := 5
	price := decimal.RequireFromString("12.5000")
	created, err := svc.Create(ctx, tenant, CreateProductInput{
		SKU:               "SKU-001",
		Name:              "widget",
		MinimumStockLevel: &minimum,
		UnitPrice:         &price,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Unit != "unit" {
		t.Fatalf("expected default unit, got %q", created.Unit)
	}
	if !created.IsActive {
		t.Fatal("expected product active by default")
	}

	// Same SKU in the same tenant is refused.
	_, err = svc.Create(ctx, tenant, CreateProductInput{SKU: "SKU-001", Name: "other"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Another tenant may reuse the SKU.
	if _, err := svc.Create(ctx, uuid.New(), CreateProductInput{SKU: "SKU-001", Name: "widget"}); err != nil {
		t.Fatalf("cross-tenant create: %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()
	tenant := uuid.New()

	negative := -1
	badPrice := decimal.RequireFromString("-1")
	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing sku", CreateProductInput{Name: "widget"}},
		{"blank sku", CreateProductInput{SKU: "   ", Name: "widget"}},
		{"missing name", CreateProductInput{SKU: "SKU-002"}},
		{"negative minimum", CreateProductInput{SKU: "SKU-002", Name: "w", MinimumStockLevel: &negative}},
		{"negative price", CreateProductInput{SKU: "SKU-002", Name: "w", UnitPrice: &badPrice}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tenant, tc.input); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()
	tenant := uuid.New()

	created, err := svc.Create(ctx, tenant, CreateProductInput{SKU: "SKU-010", Name: "widget"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "renamed widget"
	inactive := false
	minimum := 3
	updated, err := svc.Update(ctx, tenant, created.ID, UpdateProductInput{
		Name:              &name,
		IsActive:          &inactive,
		MinimumStockLevel: &minimum,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.IsActive || updated.MinimumStockLevel == nil || *updated.MinimumStockLevel != 3 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.SKU != "SKU-010" {
		t.Fatalf("sku must not change on update, got %q", updated.SKU)
	}

	blank := "  "
	if _, err := svc.Update(ctx, tenant, created.ID, UpdateProductInput{Name: &blank}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteProductGuard(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	tenant := uuid.New()

	created, err := svc.Create(ctx, tenant, CreateProductInput{SKU: "SKU-020", Name: "widget"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	item := models.InventoryItem{
		ID:        uuid.New(),
		TenantID:  tenant,
		ProductID: created.ID,
		BinID:     uuid.New(),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	if err := svc.Delete(ctx, tenant, created.ID); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	if err := db.Delete(&item).Error; err != nil {
		t.Fatalf("clear inventory: %v", err)
	}
	if err := svc.Delete(ctx, tenant, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, tenant, created.ID); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected product gone, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()
	tenant := uuid.New()

	inactive := false
	for _, p := range []CreateProductInput{
		{SKU: "APX-001", Name: "apex bracket"},
		{SKU: "APX-002", Name: "apex hinge", IsActive: &inactive},
		{SKU: "ZRD-001", Name: "zero drum"},
	} {
		if _, err := svc.Create(ctx, tenant, p); err != nil {
			t.Fatalf("create %s: %v", p.SKU, err)
		}
	}

	all, err := svc.List(ctx, tenant, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].SKU != "APX-001" {
		t.Fatalf("unexpected listing: %d rows", len(all))
	}

	active, err := svc.List(ctx, tenant, ListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active products, got %d", len(active))
	}

	matched, err := svc.List(ctx, tenant, ListFilter{Search: "APX"})
	if err != nil {
		t.Fatalf("list search: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.InventoryItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
