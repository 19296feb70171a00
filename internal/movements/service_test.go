package movements

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/enums"
)

func TestRecordAndHistory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	tenant := uuid.New()
	item := uuid.New()
	actor := uuid.New()

	reason := "manual recount"
	steps := []RecordMovementInput{
		{TenantID: tenant, InventoryItemID: item, ActorUserID: actor, Type: enums.MovementTypeReceiving, FromQty: 0, ToQty: 10},
		{TenantID: tenant, InventoryItemID: item, ActorUserID: actor, Type: enums.MovementTypeReservation, FromQty: 10, ToQty: 6},
		{TenantID: tenant, InventoryItemID: item, ActorUserID: actor, Type: enums.MovementTypeAdjustmentDecrease, FromQty: 6, ToQty: 5, Reason: &reason},
	}
	for _, step := range steps {
		if _, err := svc.Record(ctx, db, step); err != nil {
			t.Fatalf("record %s: %v", step.Type, err)
		}
	}

	history, err := svc.HistoryForItem(ctx, tenant, item)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(history))
	}
	seen := map[enums.MovementType]bool{}
	for _, movement := range history {
		seen[movement.Type] = true
	}
	for _, want := range []enums.MovementType{enums.MovementTypeReceiving, enums.MovementTypeReservation, enums.MovementTypeAdjustmentDecrease} {
		if !seen[want] {
			t.Fatalf("missing movement type %s", want)
		}
	}
}

func TestRecordValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	valid := RecordMovementInput{
		TenantID:        uuid.New(),
		InventoryItemID: uuid.New(),
		ActorUserID:     uuid.New(),
		Type:            enums.MovementTypeRelease,
		FromQty:         2,
		ToQty:           5,
	}

	cases := []struct {
		name   string
		mutate func(*RecordMovementInput)
	}{
		{"missing tenant", func(i *RecordMovementInput) { i.TenantID = uuid.Nil }},
		{"missing item", func(i *RecordMovementInput) { i.InventoryItemID = uuid.Nil }},
		{"missing actor", func(i *RecordMovementInput) { i.ActorUserID = uuid.Nil }},
		{"bad type", func(i *RecordMovementInput) { i.Type = enums.MovementType("teleport") }},
		{"negative from", func(i *RecordMovementInput) { i.FromQty = -1 }},
		{"negative to", func(i *RecordMovementInput) { i.ToQty = -1 }},
	}
	for _, tc := range cases {
		input := valid
		tc.mutate(&input)
		if _, err := svc.Record(ctx, db, input); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestHistoryScopedToTenant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	item := uuid.New()
	mine := uuid.New()
	other := uuid.New()

	for _, tenant := range []uuid.UUID{mine, other} {
		if _, err := svc.Record(ctx, db, RecordMovementInput{
			TenantID:        tenant,
			InventoryItemID: item,
			ActorUserID:     uuid.New(),
			Type:            enums.MovementTypeReceiving,
			ToQty:           5,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	history, err := svc.HistoryForItem(ctx, mine, item)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].TenantID != mine {
		t.Fatalf("expected only this tenant's movements, got %d rows", len(history))
	}
}

func TestRecentForTenantLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	tenant := uuid.New()

	for i := 0; i < 5; i++ {
		if _, err := svc.Record(ctx, db, RecordMovementInput{
			TenantID:        tenant,
			InventoryItemID: uuid.New(),
			ActorUserID:     uuid.New(),
			Type:            enums.MovementTypeReceiving,
			ToQty:           i + 1,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := svc.RecentForTenant(ctx, tenant, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(recent))
	}

	all, err := svc.RecentForTenant(ctx, tenant, 0)
	if err != nil {
		t.Fatalf("recent default limit: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected all 5 rows under the default limit, got %d", len(all))
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
	dsn := "file:movements_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
