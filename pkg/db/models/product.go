package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry inventory rows point at. MinimumStockLevel
// feeds the low-stock query; nil means no minimum is configured.
type Product struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	TenantID          uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index"`
	SKU               string           `gorm:"column:sku;not null"`
	Name              string           `gorm:"column:name;not null"`
	Description       *string          `gorm:"column:description"`
	Unit              string           `gorm:"column:unit;not null;default:'unit'"`
	MinimumStockLevel *int             `gorm:"column:minimum_stock_level"`
	UnitPrice         *decimal.Decimal `gorm:"column:unit_price;type:numeric(12,4)"`
	IsActive          bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
