package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
	"github.com/binflowhq/binflow-backend/pkg/db/models"
)

// Service exposes tenant catalog management.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, tenantID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, tenantID, productID uuid.UUID) error
	Get(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Product, error)
	FindByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU               string
	Name              string
	Description       *string
	Unit              string
	MinimumStockLevel *int
	UnitPrice         *decimal.Decimal
	IsActive          *bool
}

// UpdateProductInput holds optional mutation values; nil fields keep their
// current value.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	Unit              *string
	MinimumStockLevel *int
	UnitPrice         *decimal.Decimal
	IsActive          *bool
}

type service struct {
	repo Repository
}

// NewService constructs a product service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.MinimumStockLevel != nil && *input.MinimumStockLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level cannot be negative")
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	if _, err := s.repo.FindBySKU(ctx, tenantID, sku); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = "unit"
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	product := &models.Product{
		ID:                uuid.New(),
		TenantID:          tenantID,
		SKU:               sku,
		Name:              name,
		Description:       input.Description,
		Unit:              unit,
		MinimumStockLevel: input.MinimumStockLevel,
		UnitPrice:         input.UnitPrice,
		IsActive:          active,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, tenantID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cannot be empty")
		}
		product.Unit = unit
	}
	if input.MinimumStockLevel != nil {
		if *input.MinimumStockLevel < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level cannot be negative")
		}
		product.MinimumStockLevel = input.MinimumStockLevel
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		product.UnitPrice = input.UnitPrice
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return product, nil
}

// Delete removes a product from the catalog. Products still referenced by
// inventory rows cannot be removed; deactivate them instead.
func (s *service) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if _, err := s.Get(ctx, tenantID, productID); err != nil {
		return err
	}

	count, err := s.repo.CountInventoryRows(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product still has inventory rows")
	}
	return s.repo.Delete(ctx, tenantID, productID)
}

func (s *service) Get(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Product, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	return s.repo.ListByTenant(ctx, tenantID, filter)
}

// FindByID satisfies the loader interface the inventory service depends on.
func (s *service) FindByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, tenantID, productID)
}
