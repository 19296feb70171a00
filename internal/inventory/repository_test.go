package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/pagination"
)

func TestGuardedQuantityMoves(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	item := seedRepoItem(t, db, tenantID, 10, 0)

	require.NoError(t, repo.MoveAvailableToReserved(ctx, item.ID, 4))
	got := reload(t, db, item.ID)
	assert.Equal(t, 6, got.AvailableQty)
	assert.Equal(t, 4, got.ReservedQty)

	// more than is free
	require.ErrorIs(t, repo.MoveAvailableToReserved(ctx, item.ID, 7), ErrStaleRow)

	// more than is reserved
	require.ErrorIs(t, repo.MoveReservedToAvailable(ctx, item.ID, 5), ErrStaleRow)

	require.NoError(t, repo.MoveReservedToAvailable(ctx, item.ID, 4))
	got = reload(t, db, item.ID)
	assert.Equal(t, 10, got.AvailableQty)
	assert.Equal(t, 0, got.ReservedQty)
}

func TestSetAvailableQtyRequiresExpectedValue(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	item := seedRepoItem(t, db, tenantID, 8, 0)

	require.ErrorIs(t, repo.SetAvailableQty(ctx, item.ID, 9, 3), ErrStaleRow)
	assert.Equal(t, 8, reload(t, db, item.ID).AvailableQty)

	require.NoError(t, repo.SetAvailableQty(ctx, item.ID, 8, 3))
	assert.Equal(t, 3, reload(t, db, item.ID).AvailableQty)
}

func TestDeleteOnlyRemovesEmptyRows(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	stocked := seedRepoItem(t, db, tenantID, 2, 0)
	require.ErrorIs(t, repo.Delete(ctx, tenantID, stocked.ID), ErrStaleRow)
	assert.Equal(t, 2, reload(t, db, stocked.ID).AvailableQty)

	reserved := seedRepoItem(t, db, tenantID, 0, 1)
	require.ErrorIs(t, repo.Delete(ctx, tenantID, reserved.ID), ErrStaleRow)

	empty := seedRepoItem(t, db, tenantID, 0, 0)
	require.NoError(t, repo.Delete(ctx, tenantID, empty.ID))
	var count int64
	require.NoError(t, db.Model(&models.InventoryItem{}).Where("id = ?", empty.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListByTenantCursorWindow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		item := seedRepoItem(t, db, tenantID, 1, 0)
		require.NoError(t, db.Model(&models.InventoryItem{}).
			Where("id = ?", item.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		ids = append(ids, item.ID)
	}

	first, err := repo.ListByTenant(ctx, tenantID, ListFilter{}, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[2], first[0].ID)
	assert.Equal(t, ids[1], first[1].ID)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.ListByTenant(ctx, tenantID, ListFilter{}, 2, cursor)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
}

func TestFindByIdentityTreatsNullBatchAsValue(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()
	binID := uuid.New()

	batch := "B-100"
	withBatch := &models.InventoryItem{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ProductID:    productID,
		BinID:        binID,
		AvailableQty: 5,
		BatchNumber:  &batch,
	}
	require.NoError(t, db.Create(withBatch).Error)
	withoutBatch := &models.InventoryItem{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ProductID:    productID,
		BinID:        binID,
		AvailableQty: 7,
	}
	require.NoError(t, db.Create(withoutBatch).Error)

	found, err := repo.FindByIdentity(ctx, ItemIdentity{
		TenantID:  tenantID,
		ProductID: productID,
		BinID:     binID,
	})
	require.NoError(t, err)
	assert.Equal(t, withoutBatch.ID, found.ID)

	found, err = repo.FindByIdentity(ctx, ItemIdentity{
		TenantID:    tenantID,
		ProductID:   productID,
		BinID:       binID,
		BatchNumber: &batch,
	})
	require.NoError(t, err)
	assert.Equal(t, withBatch.ID, found.ID)
}

func TestSumByProductIgnoresOtherProducts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	productID := uuid.New()

	first := seedRepoItem(t, db, tenantID, 4, 1)
	first.ProductID = productID
	require.NoError(t, db.Save(first).Error)
	second := seedRepoItem(t, db, tenantID, 6, 2)
	second.ProductID = productID
	require.NoError(t, db.Save(second).Error)
	seedRepoItem(t, db, tenantID, 99, 99)

	totals, err := repo.SumByProduct(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, totals.TotalAvailable)
	assert.Equal(t, 3, totals.TotalReserved)

	empty, err := repo.SumByProduct(ctx, tenantID, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalAvailable)
	assert.Zero(t, empty.TotalReserved)
}

func seedRepoItem(t *testing.T, db *gorm.DB, tenantID uuid.UUID, available, reserved int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ProductID:    uuid.New(),
		BinID:        uuid.New(),
		AvailableQty: available,
		ReservedQty:  reserved,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func reload(t *testing.T, db *gorm.DB, itemID uuid.UUID) *models.InventoryItem {
	t.Helper()
	var item models.InventoryItem
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return &item
}
