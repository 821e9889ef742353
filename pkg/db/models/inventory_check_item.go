package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryCheckItem is one row of a node's materials checklist.
type InventoryCheckItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NodeID     uuid.UUID       `gorm:"column:node_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	UnitType   string          `gorm:"column:unit_type;not null"`
	PlannedQty decimal.Decimal `gorm:"column:planned_qty;type:numeric(12,3);not null;default:0"`
	Completed  bool            `gorm:"column:completed;not null;default:false"`
	SortOrder  int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
