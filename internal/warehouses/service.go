package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
)

// Service manages the warehouse -> zone -> aisle -> shelf -> bin hierarchy.
type Service interface {
	CreateWarehouse(ctx context.Context, tenantID uuid.UUID, input CreateWarehouseInput) (*models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, input UpdateWarehouseInput) (*models.Warehouse, error)
	DeleteWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) error
	GetWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context, tenantID uuid.UUID) ([]models.Warehouse, error)

	CreateZone(ctx context.Context, tenantID, warehouseID uuid.UUID, code string, name *string) (*models.Zone, error)
	CreateAisle(ctx context.Context, tenantID, zoneID uuid.UUID, code string) (*models.Aisle, error)
	CreateShelf(ctx context.Context, tenantID, aisleID uuid.UUID, code string) (*models.Shelf, error)
	CreateBin(ctx context.Context, tenantID, shelfID uuid.UUID, code string, capacity *int) (*models.Bin, error)
	DeleteBin(ctx context.Context, tenantID, binID uuid.UUID) error
	GetBin(ctx context.Context, tenantID, binID uuid.UUID) (*models.Bin, error)
	ListBins(ctx context.Context, tenantID uuid.UUID, shelfID *uuid.UUID) ([]models.Bin, error)
}

// CreateWarehouseInput holds the validated payload to create a warehouse.
type CreateWarehouseInput struct {
	Code    string
	Name    string
	Address *string
}

// UpdateWarehouseInput holds optional mutation values; nil fields keep their
// current value.
type UpdateWarehouseInput struct {
	Name     *string
	Address  *string
	IsActive *bool
}

type service struct {
	repo Repository
}

// NewService constructs a warehouse service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateWarehouse(ctx context.Context, tenantID uuid.UUID, input CreateWarehouseInput) (*models.Warehouse, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	warehouse := &models.Warehouse{
		ID:       uuid.New(),
		TenantID: tenantID,
		Code:     code,
		Name:     name,
		Address:  input.Address,
		IsActive: true,
	}
	if err := s.repo.CreateWarehouse(ctx, warehouse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert warehouse")
	}
	return warehouse, nil
}

func (s *service) UpdateWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, input UpdateWarehouseInput) (*models.Warehouse, error) {
	warehouse, err := s.GetWarehouse(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		warehouse.Name = name
	}
	if input.Address != nil {
		warehouse.Address = input.Address
	}
	if input.IsActive != nil {
		warehouse.IsActive = *input.IsActive
	}

	if err := s.repo.UpdateWarehouse(ctx, warehouse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update warehouse")
	}
	return warehouse, nil
}

// DeleteWarehouse removes the warehouse and cascades through its hierarchy.
// It is refused while any bin underneath still holds inventory rows.
func (s *service) DeleteWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) error {
	if _, err := s.GetWarehouse(ctx, tenantID, warehouseID); err != nil {
		return err
	}

	count, err := s.repo.CountInventoryInWarehouse(ctx, tenantID, warehouseID)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "warehouse still holds inventory")
	}
	return s.repo.DeleteWarehouse(ctx, tenantID, warehouseID)
}

func (s *service) GetWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID) (*models.Warehouse, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	warehouse, err := s.repo.FindWarehouseByID(ctx, tenantID, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, err
	}
	return warehouse, nil
}

func (s *service) ListWarehouses(ctx context.Context, tenantID uuid.UUID) ([]models.Warehouse, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	return s.repo.ListWarehouses(ctx, tenantID)
}

func (s *service) CreateZone(ctx context.Context, tenantID, warehouseID uuid.UUID, code string, name *string) (*models.Zone, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if _, err := s.GetWarehouse(ctx, tenantID, warehouseID); err != nil {
		return nil, err
	}

	zone := &models.Zone{
		ID:          uuid.New(),
		WarehouseID: warehouseID,
		Code:        code,
		Name:        name,
	}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert zone")
	}
	return zone, nil
}

func (s *service) CreateAisle(ctx context.Context, tenantID, zoneID uuid.UUID, code string) (*models.Aisle, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if _, err := s.repo.FindZoneByID(ctx, tenantID, zoneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "zone not found")
		}
		return nil, err
	}

	aisle := &models.Aisle{
		ID:     uuid.New(),
		ZoneID: zoneID,
		Code:   code,
	}
	if err := s.repo.CreateAisle(ctx, aisle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert aisle")
	}
	return aisle, nil
}

func (s *service) CreateShelf(ctx context.Context, tenantID, aisleID uuid.UUID, code string) (*models.Shelf, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if _, err := s.repo.FindAisleByID(ctx, tenantID, aisleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "aisle not found")
		}
		return nil, err
	}

	shelf := &models.Shelf{
		ID:      uuid.New(),
		AisleID: aisleID,
		Code:    code,
	}
	if err := s.repo.CreateShelf(ctx, shelf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert shelf")
	}
	return shelf, nil
}

func (s *service) CreateBin(ctx context.Context, tenantID, shelfID uuid.UUID, code string, capacity *int) (*models.Bin, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if capacity != nil && *capacity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
	}
	if _, err := s.repo.FindShelfByID(ctx, tenantID, shelfID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shelf not found")
		}
		return nil, err
	}

	bin := &models.Bin{
		ID:       uuid.New(),
		TenantID: tenantID,
		ShelfID:  shelfID,
		Code:     code,
		Capacity: capacity,
		IsActive: true,
	}
	if err := s.repo.CreateBin(ctx, bin); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert bin")
	}
	return bin, nil
}

// DeleteBin removes an empty bin. Bins referenced by inventory rows are
// protected; the database enforces the same rule with ON DELETE RESTRICT.
func (s *service) DeleteBin(ctx context.Context, tenantID, binID uuid.UUID) error {
	if _, err := s.GetBin(ctx, tenantID, binID); err != nil {
		return err
	}

	count, err := s.repo.CountInventoryInBin(ctx, tenantID, binID)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "bin still holds inventory")
	}
	return s.repo.DeleteBin(ctx, tenantID, binID)
}

func (s *service) GetBin(ctx context.Context, tenantID, binID uuid.UUID) (*models.Bin, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	bin, err := s.repo.FindBinByID(ctx, tenantID, binID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bin not found")
		}
		return nil, err
	}
	return bin, nil
}

func (s *service) ListBins(ctx context.Context, tenantID uuid.UUID, shelfID *uuid.UUID) ([]models.Bin, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	return s.repo.ListBins(ctx, tenantID, shelfID)
}
