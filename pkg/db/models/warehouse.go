package models

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is the top of the storage location hierarchy
// (warehouse -> zone -> aisle -> shelf -> bin).
type Warehouse struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	Name      string    `gorm:"column:name;not null"`
	Address   *string   `gorm:"column:address"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	Zones     []Zone    `gorm:"foreignKey:WarehouseID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Zone partitions a warehouse floor.
type Zone struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	WarehouseID uuid.UUID `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Code        string    `gorm:"column:code;not null"`
	Name        *string   `gorm:"column:name"`
	Aisles      []Aisle   `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Aisle is a walkable lane inside a zone.
type Aisle struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ZoneID    uuid.UUID `gorm:"column:zone_id;type:uuid;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	Shelves   []Shelf   `gorm:"foreignKey:AisleID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Shelf is one level of racking inside an aisle.
type Shelf struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AisleID   uuid.UUID `gorm:"column:aisle_id;type:uuid;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	Bins      []Bin     `gorm:"foreignKey:ShelfID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Bin is the smallest addressable storage location; inventory items point here.
type Bin struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	ShelfID   uuid.UUID `gorm:"column:shelf_id;type:uuid;not null;index"`
	Code      string    `gorm:"column:code;not null"`
	Capacity  *int      `gorm:"column:capacity"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
