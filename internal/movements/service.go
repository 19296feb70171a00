package movements

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/enums"
)

// Service records and reads immutable stock movement history. Record accepts
// the caller's transaction handle so the audit row commits or rolls back with
// the quantity mutation it describes.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error)
	HistoryForItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]models.StockMovement, error)
	RecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.StockMovement, error)
}

// RecordMovementInput captures the immutable data a movement entry requires.
type RecordMovementInput struct {
	TenantID        uuid.UUID          `json:"tenant_id"`
	InventoryItemID uuid.UUID          `json:"inventory_item_id"`
	ActorUserID     uuid.UUID          `json:"actor_user_id"`
	Type            enums.MovementType `json:"type"`
	FromQty         int                `json:"from_qty"`
	ToQty           int                `json:"to_qty"`
	Reason          *string            `json:"reason,omitempty"`
	Metadata        json.RawMessage    `json:"metadata,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a movement service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error) {
	if input.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if input.InventoryItemID == uuid.Nil {
		return nil, fmt.Errorf("inventory item id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, fmt.Errorf("actor user id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid movement type %q", input.Type)
	}
	if input.FromQty < 0 || input.ToQty < 0 {
		return nil, fmt.Errorf("movement quantities cannot be negative")
	}

	movement := &models.StockMovement{
		ID:              uuid.New(),
		TenantID:        input.TenantID,
		InventoryItemID: input.InventoryItemID,
		ActorUserID:     input.ActorUserID,
		Type:            input.Type,
		FromQty:         input.FromQty,
		ToQty:           input.ToQty,
		Reason:          input.Reason,
		Metadata:        input.Metadata,
	}

	if err := s.repo.WithTx(tx).Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *service) HistoryForItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]models.StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("inventory item id is required")
	}
	return s.repo.ListByItem(ctx, tenantID, itemID)
}

func (s *service) RecentForTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	return s.repo.ListByTenant(ctx, tenantID, limit)
}
