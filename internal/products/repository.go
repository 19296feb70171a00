package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, tenantID, productID uuid.UUID) error
	FindByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Product, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Product, error)
	CountInventoryRows(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	ActiveOnly bool
	Search     string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Delete(&models.Product{}).
		Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "tenant_id = ? AND id = ?", tenantID, productID).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "tenant_id = ? AND sku = ?", tenantID, sku).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.ActiveOnly {
		qb = qb.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		qb = qb.Where("sku LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var rows []models.Product
	err := qb.Order("sku ASC").Find(&rows).Error
	return rows, err
}

// CountInventoryRows reports how many inventory rows still reference the
// product; deletion is refused while any remain.
func (r *repository) CountInventoryRows(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Count(&count).
		Error
	return count, err
}
