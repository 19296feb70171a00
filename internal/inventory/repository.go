package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/pagination"
)

// Repository manages persistence for inventory items. All lookups are scoped
// by tenant; quantity updates are guarded compare-and-set statements so a
// concurrent writer can never be silently overwritten.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error)
	FindByIdentity(ctx context.Context, identity ItemIdentity) (*models.InventoryItem, error)
	ListReservableByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]models.InventoryItem, error)
	ListExpiringWithin(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]models.InventoryItem, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryItem, error)
	SumByProduct(ctx context.Context, tenantID, productID uuid.UUID) (StockTotals, error)
	MoveAvailableToReserved(ctx context.Context, itemID uuid.UUID, qty int) error
	MoveReservedToAvailable(ctx context.Context, itemID uuid.UUID, qty int) error
	SetAvailableQty(ctx context.Context, itemID uuid.UUID, expected, next int) error
	Delete(ctx context.Context, tenantID, itemID uuid.UUID) error
}

// ItemIdentity is the uniqueness key of an inventory row. Nil batch/lot is a
// concrete value, not a wildcard: two nil-batch rows for the same product/bin
// collide.
type ItemIdentity struct {
	TenantID    uuid.UUID
	ProductID   uuid.UUID
	BinID       uuid.UUID
	BatchNumber *string
	LotNumber   *string
}

// StockTotals aggregates quantities for one product across all bins.
type StockTotals struct {
	TotalAvailable int `json:"total_available"`
	TotalReserved  int `json:"total_reserved"`
}

// ListFilter narrows tenant-wide item listings.
type ListFilter struct {
	ProductID *uuid.UUID
	BinID     *uuid.UUID
}

// ErrStaleRow is returned by guarded quantity updates when the row no longer
// matches the state the caller read.
var ErrStaleRow = errors.New("inventory row changed concurrently")

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND tenant_id = ?", itemID, tenantID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByIdentity(ctx context.Context, identity ItemIdentity) (*models.InventoryItem, error) {
	qb := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND bin_id = ?", identity.TenantID, identity.ProductID, identity.BinID)

	if identity.BatchNumber == nil {
		qb = qb.Where("batch_number IS NULL")
	} else {
		qb = qb.Where("batch_number = ?", *identity.BatchNumber)
	}
	if identity.LotNumber == nil {
		qb = qb.Where("lot_number IS NULL")
	} else {
		qb = qb.Where("lot_number = ?", *identity.LotNumber)
	}

	var item models.InventoryItem
	if err := qb.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListReservableByProduct returns rows with free stock in FEFO order: soonest
// expiry first, never-expiring rows last, id as the deterministic tie-break.
func (r *repository) ListReservableByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND available_qty > 0", tenantID, productID).
		Order("expiry_date ASC NULLS LAST").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repository) ListExpiringWithin(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ? AND available_qty > 0", tenantID, cutoff).
		Order("expiry_date ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListByTenant walks the tenant's rows newest first. The cursor pins the last
// (created_at, id) pair the previous page ended on.
func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.InventoryItem, error) {
	qb := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.ProductID != nil {
		qb = qb.Where("product_id = ?", *filter.ProductID)
	}
	if filter.BinID != nil {
		qb = qb.Where("bin_id = ?", *filter.BinID)
	}
	if cursor != nil {
		qb = qb.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	if limit > 0 {
		qb = qb.Limit(limit)
	}

	var rows []models.InventoryItem
	err := qb.Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) SumByProduct(ctx context.Context, tenantID, productID uuid.UUID) (StockTotals, error) {
	var totals StockTotals
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("COALESCE(SUM(available_qty), 0) AS total_available, COALESCE(SUM(reserved_qty), 0) AS total_reserved").
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Scan(&totals).
		Error
	return totals, err
}

// MoveAvailableToReserved shifts qty units between the two quantity columns.
// The WHERE guard keeps the row from going negative under concurrent writers;
// zero rows affected means the snapshot the caller planned against is stale.
func (r *repository) MoveAvailableToReserved(ctx context.Context, itemID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND available_qty >= ?", itemID, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty - ?", qty),
			"reserved_qty":  gorm.Expr("reserved_qty + ?", qty),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}

func (r *repository) MoveReservedToAvailable(ctx context.Context, itemID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND reserved_qty >= ?", itemID, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty + ?", qty),
			"reserved_qty":  gorm.Expr("reserved_qty - ?", qty),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}

// SetAvailableQty writes the adjusted quantity only if the row still holds the
// value the adjustment was computed from.
func (r *repository) SetAvailableQty(ctx context.Context, itemID uuid.UUID, expected, next int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND available_qty = ?", itemID, expected).
		Updates(map[string]any{
			"available_qty": next,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}

// Delete removes the row only while both quantity columns are still zero, so
// stock landed by a concurrent receive, release, or adjustment cannot be
// destroyed by a stale emptiness check.
func (r *repository) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND available_qty = 0 AND reserved_qty = 0", itemID, tenantID).
		Delete(&models.InventoryItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRow
	}
	return nil
}
