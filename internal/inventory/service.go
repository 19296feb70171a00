package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/internal/movements"
	"github.com/binflowhq/binflow-backend/pkg/db"
	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/enums"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
	"github.com/binflowhq/binflow-backend/pkg/metrics"
	"github.com/binflowhq/binflow-backend/pkg/pagination"
)

const maxReasonLength = 500

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
}

type movementRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input movements.RecordMovementInput) (*models.StockMovement, error)
}

// Service exposes the inventory ledger: receiving, FEFO reservation, release,
// manual adjustment, deletion guarding, and the read-side stock queries.
type Service interface {
	ReceiveStock(ctx context.Context, tenantID, actorID uuid.UUID, input ReceiveStockInput) (*models.InventoryItem, error)
	Reserve(ctx context.Context, tenantID, productID uuid.UUID, qty int, actorID uuid.UUID) ([]ReservationLine, error)
	Release(ctx context.Context, tenantID, itemID uuid.UUID, qty int, actorID uuid.UUID) (*models.InventoryItem, error)
	Adjust(ctx context.Context, tenantID, itemID uuid.UUID, direction enums.AdjustmentDirection, qty int, reason string, actorID uuid.UUID) (*models.InventoryItem, error)
	CanDelete(ctx context.Context, tenantID, itemID uuid.UUID) (bool, error)
	DeleteItem(ctx context.Context, tenantID, itemID uuid.UUID) error
	GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context, tenantID uuid.UUID, filter ListFilter, page pagination.Params) (ItemPage, error)
	TotalStockForProduct(ctx context.Context, tenantID, productID uuid.UUID) (StockTotals, error)
	IsLowStock(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)
	ItemsExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]models.InventoryItem, error)
}

// ReceiveStockInput holds the validated payload to create an inventory item.
type ReceiveStockInput struct {
	ProductID    uuid.UUID
	BinID        uuid.UUID
	Qty          int
	ExpiryDate   *time.Time
	BatchNumber  *string
	LotNumber    *string
	ReceivedDate *time.Time
	CostPerUnit  *decimal.Decimal
}

// ReservationLine is one row-level slice of a reservation. The caller uses
// these pairs to link order lines to the stock that backs them.
type ReservationLine struct {
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	Qty             int       `json:"qty"`
}

// ItemPage is one page of the tenant's item listing, newest rows first.
type ItemPage struct {
	Items      []models.InventoryItem `json:"items"`
	NextCursor *string                `json:"next_cursor,omitempty"`
}

type service struct {
	tx        txRunner
	repo      Repository
	products  productLoader
	movements movementRecorder
	metrics   *metrics.StockMetrics
}

// NewService constructs the inventory service.
func NewService(tx txRunner, repo Repository, products productLoader, recorder movementRecorder, stockMetrics *metrics.StockMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("movement recorder required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		products:  products,
		movements: recorder,
		metrics:   stockMetrics,
	}, nil
}

func (s *service) ReceiveStock(ctx context.Context, tenantID, actorID uuid.UUID, input ReceiveStockInput) (*models.InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.ProductID == uuid.Nil || input.BinID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and bin id required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.CostPerUnit != nil && input.CostPerUnit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost per unit cannot be negative")
	}

	if _, err := s.products.FindByID(ctx, tenantID, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}

	identity := ItemIdentity{
		TenantID:    tenantID,
		ProductID:   input.ProductID,
		BinID:       input.BinID,
		BatchNumber: input.BatchNumber,
		LotNumber:   input.LotNumber,
	}

	var created *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByIdentity(ctx, identity); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "inventory item already exists for this product, bin, batch and lot")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := &models.InventoryItem{
			ID:           uuid.New(),
			TenantID:     tenantID,
			ProductID:    input.ProductID,
			BinID:        input.BinID,
			AvailableQty: input.Qty,
			ExpiryDate:   input.ExpiryDate,
			BatchNumber:  input.BatchNumber,
			LotNumber:    input.LotNumber,
			ReceivedDate: input.ReceivedDate,
			CostPerUnit:  input.CostPerUnit,
		}
		if err := repo.Create(ctx, item); err != nil {
			if db.IsUniqueViolation(err, "uidx_inventory_items_identity") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "inventory item already exists for this product, bin, batch and lot")
			}
			return err
		}

		if _, err := s.movements.Record(ctx, tx, movements.RecordMovementInput{
			TenantID:        tenantID,
			InventoryItemID: item.ID,
			ActorUserID:     actorID,
			Type:            enums.MovementTypeReceiving,
			FromQty:         0,
			ToQty:           item.AvailableQty,
		}); err != nil {
			return err
		}

		created = item
		return nil
	})
	if err != nil {
		s.observeFailure("receive", err)
		return nil, err
	}
	s.metrics.IncSuccess("receive")
	return created, nil
}

// Reserve commits qty units of the product against one or more rows in FEFO
// order. The whole walk runs in a single transaction, so a shortfall or a
// concurrent-writer conflict rolls back every row already touched.
func (s *service) Reserve(ctx context.Context, tenantID, productID uuid.UUID, qty int, actorID uuid.UUID) ([]ReservationLine, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	started := time.Now()
	var lines []ReservationLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		candidates, err := repo.ListReservableByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}

		remaining := qty
		for _, row := range candidates {
			if remaining == 0 {
				break
			}
			take := remaining
			if row.AvailableQty < take {
				take = row.AvailableQty
			}

			if err := repo.MoveAvailableToReserved(ctx, row.ID, take); err != nil {
				if errors.Is(err, ErrStaleRow) {
					return pkgerrors.Wrap(pkgerrors.CodeConcurrentModification, err, "inventory row changed during reservation")
				}
				return err
			}

			// Guard is a floor check, not an exact match; audit from the
			// post-update row rather than the candidate snapshot.
			fresh, err := repo.FindByID(ctx, tenantID, row.ID)
			if err != nil {
				return err
			}

			if _, err := s.movements.Record(ctx, tx, movements.RecordMovementInput{
				TenantID:        tenantID,
				InventoryItemID: fresh.ID,
				ActorUserID:     actorID,
				Type:            enums.MovementTypeReservation,
				FromQty:         fresh.AvailableQty + take,
				ToQty:           fresh.AvailableQty,
				Metadata:        reservationMetadata(productID, take),
			}); err != nil {
				return err
			}

			lines = append(lines, ReservationLine{InventoryItemID: row.ID, Qty: take})
			remaining -= take
		}

		if remaining > 0 {
			return pkgerrors.InsufficientStock(
				fmt.Sprintf("cannot reserve %d units of product %s", qty, productID),
				remaining,
			)
		}
		return nil
	})
	s.metrics.ObserveDuration("reserve", time.Since(started))
	if err != nil {
		s.observeFailure("reserve", err)
		return nil, err
	}
	s.metrics.IncSuccess("reserve")
	s.metrics.AddReservedUnits("reserve", qty)
	return lines, nil
}

// Release reverses a prior reservation on one specific row. It never searches
// other rows; the caller must address the rows its reservation touched.
func (s *service) Release(ctx context.Context, tenantID, itemID uuid.UUID, qty int, actorID uuid.UUID) (*models.InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var released *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindByID(ctx, tenantID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return err
		}

		if qty > item.ReservedQty {
			return pkgerrors.InsufficientStock(
				fmt.Sprintf("cannot release %d units, only %d reserved", qty, item.ReservedQty),
				qty-item.ReservedQty,
			)
		}

		if err := repo.MoveReservedToAvailable(ctx, item.ID, qty); err != nil {
			if errors.Is(err, ErrStaleRow) {
				return pkgerrors.Wrap(pkgerrors.CodeConcurrentModification, err, "inventory row changed during release")
			}
			return err
		}

		// The guard only checks reserved_qty, so the pre-update snapshot of
		// available_qty may be stale. Audit from the row the update produced.
		updated, err := repo.FindByID(ctx, tenantID, itemID)
		if err != nil {
			return err
		}

		if _, err := s.movements.Record(ctx, tx, movements.RecordMovementInput{
			TenantID:        tenantID,
			InventoryItemID: updated.ID,
			ActorUserID:     actorID,
			Type:            enums.MovementTypeRelease,
			FromQty:         updated.AvailableQty - qty,
			ToQty:           updated.AvailableQty,
		}); err != nil {
			return err
		}

		released = updated
		return nil
	})
	if err != nil {
		s.observeFailure("release", err)
		return nil, err
	}
	s.metrics.IncSuccess("release")
	return released, nil
}

// Adjust applies a manual correction to available stock. Reserved quantity is
// never touched here.
func (s *service) Adjust(ctx context.Context, tenantID, itemID uuid.UUID, direction enums.AdjustmentDirection, qty int, reason string, actorID uuid.UUID) (*models.InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if !direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be increase or decrease")
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if len(reason) > maxReasonLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason exceeds 500 characters")
	}

	var adjusted *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindByID(ctx, tenantID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return err
		}

		next := item.AvailableQty + qty
		movementType := enums.MovementTypeAdjustmentIncrease
		if direction == enums.AdjustmentDirectionDecrease {
			next = item.AvailableQty - qty
			movementType = enums.MovementTypeAdjustmentDecrease
			if next < 0 {
				return pkgerrors.InsufficientStock(
					fmt.Sprintf("cannot decrease by %d, only %d available", qty, item.AvailableQty),
					-next,
				)
			}
		}

		if err := repo.SetAvailableQty(ctx, item.ID, item.AvailableQty, next); err != nil {
			if errors.Is(err, ErrStaleRow) {
				return pkgerrors.Wrap(pkgerrors.CodeConcurrentModification, err, "inventory row changed during adjustment")
			}
			return err
		}

		if _, err := s.movements.Record(ctx, tx, movements.RecordMovementInput{
			TenantID:        tenantID,
			InventoryItemID: item.ID,
			ActorUserID:     actorID,
			Type:            movementType,
			FromQty:         item.AvailableQty,
			ToQty:           next,
			Reason:          &reason,
		}); err != nil {
			return err
		}

		item.AvailableQty = next
		adjusted = item
		return nil
	})
	if err != nil {
		s.observeFailure("adjust", err)
		return nil, err
	}
	s.metrics.IncSuccess("adjust")
	return adjusted, nil
}

// CanDelete reports whether the row holds no stock in either column.
func (s *service) CanDelete(ctx context.Context, tenantID, itemID uuid.UUID) (bool, error) {
	item, err := s.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return false, err
	}
	return item.AvailableQty == 0 && item.ReservedQty == 0, nil
}

// DeleteItem removes an empty row. The emptiness condition lives in the DELETE
// statement itself, so stock that lands between the lookup and the delete keeps
// the row alive.
func (s *service) DeleteItem(ctx context.Context, tenantID, itemID uuid.UUID) error {
	if _, err := s.GetItem(ctx, tenantID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, itemID); err != nil {
		if errors.Is(err, ErrStaleRow) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "inventory item still holds stock")
		}
		return err
	}
	return nil
}

func (s *service) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	item, err := s.repo.FindByID(ctx, tenantID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, tenantID uuid.UUID, filter ListFilter, page pagination.Params) (ItemPage, error) {
	if tenantID == uuid.Nil {
		return ItemPage{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return ItemPage{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	rows, err := s.repo.ListByTenant(ctx, tenantID, filter, pagination.LimitWithBuffer(page.Limit), cursor)
	if err != nil {
		return ItemPage{}, err
	}

	out := ItemPage{Items: rows}
	if len(rows) > limit {
		out.Items = rows[:limit]
		last := out.Items[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		out.NextCursor = &next
	}
	if out.Items == nil {
		out.Items = []models.InventoryItem{}
	}
	return out, nil
}

func (s *service) TotalStockForProduct(ctx context.Context, tenantID, productID uuid.UUID) (StockTotals, error) {
	if tenantID == uuid.Nil {
		return StockTotals{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if productID == uuid.Nil {
		return StockTotals{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.SumByProduct(ctx, tenantID, productID)
}

// IsLowStock compares aggregate availability against the product's configured
// minimum. A product with no minimum configured is never low.
func (s *service) IsLowStock(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	product, err := s.products.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return false, err
	}
	if product.MinimumStockLevel == nil {
		return false, nil
	}

	totals, err := s.repo.SumByProduct(ctx, tenantID, productID)
	if err != nil {
		return false, err
	}
	return totals.TotalAvailable <= *product.MinimumStockLevel, nil
}

func (s *service) ItemsExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]models.InventoryItem, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if days < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "days cannot be negative")
	}
	cutoff := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, days)
	return s.repo.ListExpiringWithin(ctx, tenantID, cutoff)
}

func (s *service) observeFailure(operation string, err error) {
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.IncFailure(operation, string(code))
}

func reservationMetadata(productID uuid.UUID, qty int) json.RawMessage {
	payload, err := json.Marshal(map[string]any{"product_id": productID, "qty": qty})
	if err != nil {
		return nil
	}
	return payload
}
