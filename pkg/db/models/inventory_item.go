package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is the unit of stock for one product in one bin. Two rows for
// the same product/bin pair may coexist only when their batch/lot labels
// differ; the quantity columns never go negative.
type InventoryItem struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID    uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	BinID        uuid.UUID        `gorm:"column:bin_id;type:uuid;not null;index"`
	AvailableQty int              `gorm:"column:available_qty;not null;default:0"`
	ReservedQty  int              `gorm:"column:reserved_qty;not null;default:0"`
	ExpiryDate   *time.Time       `gorm:"column:expiry_date;type:date"`
	BatchNumber  *string          `gorm:"column:batch_number"`
	LotNumber    *string          `gorm:"column:lot_number"`
	ReceivedDate *time.Time       `gorm:"column:received_date;type:date"`
	CostPerUnit  *decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,4)"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalQty is the conserved stock mass of the row: reservation and release
// move units between the two columns without changing this sum.
func (i InventoryItem) TotalQty() int {
	return i.AvailableQty + i.ReservedQty
}
