package warehouse

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
)

// Repository persists the storage location hierarchy. Ownership checks on
// nested levels walk the chain up to the warehouse row, which carries the
// tenant id.
type Repository interface {
	CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error
	UpdateWarehouse(ctx context.Context, warehouse *models.Warehouse) error
	DeleteWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) error
	FindWarehouseByID(ctx context.Context, tenantID, warehouseID uuid.UUID) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context, tenantID uuid.UUID) ([]models.Warehouse, error)

	CreateZone(ctx context.Context, zone *models.Zone) error
	FindZoneByID(ctx context.Context, tenantID, zoneID uuid.UUID) (*models.Zone, error)
	CreateAisle(ctx context.Context, aisle *models.Aisle) error
	FindAisleByID(ctx context.Context, tenantID, aisleID uuid.UUID) (*models.Aisle, error)
	CreateShelf(ctx context.Context, shelf *models.Shelf) error
	FindShelfByID(ctx context.Context, tenantID, shelfID uuid.UUID) (*models.Shelf, error)

	CreateBin(ctx context.Context, bin *models.Bin) error
	UpdateBin(ctx context.Context, bin *models.Bin) error
	DeleteBin(ctx context.Context, tenantID, binID uuid.UUID) error
	FindBinByID(ctx context.Context, tenantID, binID uuid.UUID) (*models.Bin, error)
	ListBins(ctx context.Context, tenantID uuid.UUID, shelfID *uuid.UUID) ([]models.Bin, error)

	CountInventoryInBin(ctx context.Context, tenantID, binID uuid.UUID) (int64, error)
	CountInventoryInWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error {
	return r.db.WithContext(ctx).Create(warehouse).Error
}

func (r *repository) UpdateWarehouse(ctx context.Context, warehouse *models.Warehouse) error {
	return r.db.WithContext(ctx).Save(warehouse).Error
}

func (r *repository) DeleteWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, warehouseID).
		Delete(&models.Warehouse{}).
		Error
}

func (r *repository) FindWarehouseByID(ctx context.Context, tenantID, warehouseID uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Preload("Zones.Aisles.Shelves.Bins").
		First(&warehouse, "tenant_id = ? AND id = ?", tenantID, warehouseID).
		Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) ListWarehouses(ctx context.Context, tenantID uuid.UUID) ([]models.Warehouse, error) {
	var rows []models.Warehouse
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repository) CreateZone(ctx context.Context, zone *models.Zone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

func (r *repository) FindZoneByID(ctx context.Context, tenantID, zoneID uuid.UUID) (*models.Zone, error) {
	var zone models.Zone
	err := r.db.WithContext(ctx).
		Joins("JOIN warehouses ON warehouses.id = zones.warehouse_id").
		Where("zones.id = ? AND warehouses.tenant_id = ?", zoneID, tenantID).
		First(&zone).
		Error
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *repository) CreateAisle(ctx context.Context, aisle *models.Aisle) error {
	return r.db.WithContext(ctx).Create(aisle).Error
}

func (r *repository) FindAisleByID(ctx context.Context, tenantID, aisleID uuid.UUID) (*models.Aisle, error) {
	var aisle models.Aisle
	err := r.db.WithContext(ctx).
		Joins("JOIN zones ON zones.id = aisles.zone_id").
		Joins("JOIN warehouses ON warehouses.id = zones.warehouse_id").
		Where("aisles.id = ? AND warehouses.tenant_id = ?", aisleID, tenantID).
		First(&aisle).
		Error
	if err != nil {
		return nil, err
	}
	return &aisle, nil
}

func (r *repository) CreateShelf(ctx context.Context, shelf *models.Shelf) error {
	return r.db.WithContext(ctx).Create(shelf).Error
}

func (r *repository) FindShelfByID(ctx context.Context, tenantID, shelfID uuid.UUID) (*models.Shelf, error) {
	var shelf models.Shelf
	err := r.db.WithContext(ctx).
		Joins("JOIN aisles ON aisles.id = shelves.aisle_id").
		Joins("JOIN zones ON zones.id = aisles.zone_id").
		Joins("JOIN warehouses ON warehouses.id = zones.warehouse_id").
		Where("shelves.id = ? AND warehouses.tenant_id = ?", shelfID, tenantID).
		First(&shelf).
		Error
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

func (r *repository) CreateBin(ctx context.Context, bin *models.Bin) error {
	return r.db.WithContext(ctx).Create(bin).Error
}

func (r *repository) UpdateBin(ctx context.Context, bin *models.Bin) error {
	return r.db.WithContext(ctx).Save(bin).Error
}

func (r *repository) DeleteBin(ctx context.Context, tenantID, binID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, binID).
		Delete(&models.Bin{}).
		Error
}

func (r *repository) FindBinByID(ctx context.Context, tenantID, binID uuid.UUID) (*models.Bin, error) {
	var bin models.Bin
	err := r.db.WithContext(ctx).
		First(&bin, "tenant_id = ? AND id = ?", tenantID, binID).
		Error
	if err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *repository) ListBins(ctx context.Context, tenantID uuid.UUID, shelfID *uuid.UUID) ([]models.Bin, error) {
	qb := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if shelfID != nil {
		qb = qb.Where("shelf_id = ?", *shelfID)
	}

	var rows []models.Bin
	err := qb.Order("code ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountInventoryInBin(ctx context.Context, tenantID, binID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("tenant_id = ? AND bin_id = ?", tenantID, binID).
		Count(&count).
		Error
	return count, err
}

func (r *repository) CountInventoryInWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("tenant_id = ? AND bin_id IN (?)",
			tenantID,
			r.db.Model(&models.Bin{}).
				Select("bins.id").
				Joins("JOIN shelves ON shelves.id = bins.shelf_id").
				Joins("JOIN aisles ON aisles.id = shelves.aisle_id").
				Joins("JOIN zones ON zones.id = aisles.zone_id").
				Where("zones.warehouse_id = ?", warehouseID),
		).
		Count(&count).
		Error
	return count, err
}
