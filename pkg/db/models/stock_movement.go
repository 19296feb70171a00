package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/binflowhq/binflow-backend/pkg/enums"
)

// StockMovement records an immutable quantity transition on an inventory item.
// Every successful reserve, release, adjust, and receiving call appends one.
type StockMovement struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	TenantID        uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;index"`
	InventoryItemID uuid.UUID          `gorm:"column:inventory_item_id;type:uuid;not null;index"`
	ActorUserID     uuid.UUID          `gorm:"column:actor_user_id;type:uuid;not null"`
	Type            enums.MovementType `gorm:"column:type;type:movement_type_enum;not null"`
	FromQty         int                `gorm:"column:from_qty;not null"`
	ToQty           int                `gorm:"column:to_qty;not null"`
	Reason          *string            `gorm:"column:reason"`
	Metadata        json.RawMessage    `gorm:"column:metadata;type:jsonb"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
}
