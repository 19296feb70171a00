package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/config"
	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/enums"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
	"github.com/binflowhq/binflow-backend/pkg/security"
)

type gormTxRunner struct{ db *gorm.DB }

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func TestRegisterCreatesTenantAndAdmin(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: gormTxRunner{db: db}})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	resp, err := svc.Register(context.Background(), RegisterRequest{
		TenantName: "Acme Logistics",
		TenantSlug: "acme",
		FirstName:  "Ada",
		LastName:   "Teller",
		Email:      "Ada@Example.com",
		Password:   "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var tenant models.Tenant
	if err := db.First(&tenant, "id = ?", resp.TenantID).Error; err != nil {
		t.Fatalf("load tenant: %v", err)
	}
	if tenant.Slug != "acme" || !tenant.IsActive {
		t.Fatalf("unexpected tenant: %+v", tenant)
	}

	var user models.User
	if err := db.First(&user, "id = ?", resp.UserID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.TenantID != tenant.ID || user.Role != enums.UserRoleAdmin || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	ok, err := security.VerifyPassword("correct horse battery", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegisterDuplicateSlugRollsBack(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{DB: gormTxRunner{db: db}})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	ctx := context.Background()

	first := RegisterRequest{
		TenantName: "Acme Logistics",
		TenantSlug: "acme",
		FirstName:  "Ada",
		LastName:   "Teller",
		Email:      "ada@example.com",
		Password:   "correct horse battery",
	}
	if _, err := svc.Register(ctx, first); err != nil {
		t.Fatalf("register: %v", err)
	}

	second := first
	second.Email = "other@example.com"
	if _, err := svc.Register(ctx, second); !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 1 {
		t.Fatalf("expected rollback to leave 1 user, got %d", userCount)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, err := NewRegisterService(RegisterServiceParams{DB: gormTxRunner{db: newTestDB(t)}})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	ctx := context.Background()

	valid := RegisterRequest{
		TenantName: "Acme",
		TenantSlug: "acme",
		Email:      "ada@example.com",
		Password:   "correct horse battery",
	}

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing slug", func(r *RegisterRequest) { r.TenantSlug = " " }},
		{"missing name", func(r *RegisterRequest) { r.TenantName = "" }},
		{"missing email", func(r *RegisterRequest) { r.Email = "" }},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }},
	}
	for _, tc := range cases {
		req := valid
		tc.mutate(&req)
		if _, err := svc.Register(ctx, req); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegisterRequiresDB(t *testing.T) {
	t.Parallel()
	if _, err := NewRegisterService(RegisterServiceParams{PasswordConfig: config.PasswordConfig{}}); err == nil {
		t.Fatal("expected error without db")
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Tenant{}, &models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
