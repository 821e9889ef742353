package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllowedQuantity caps a unit type's usage on a node and carries the
// thresholds at which the remaining allowance raises an alert.
type AllowedQuantity struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NodeID            uuid.UUID        `gorm:"column:node_id;type:uuid;not null;uniqueIndex:idx_allowed_quantities_node_unit"`
	UnitType          string           `gorm:"column:unit_type;not null;uniqueIndex:idx_allowed_quantities_node_unit"`
	AllowedQty        decimal.Decimal  `gorm:"column:allowed_qty;type:numeric(12,3);not null;default:0"`
	AlertThresholdPct *decimal.Decimal `gorm:"column:alert_threshold_pct;type:numeric(5,4)"`
	AlertThresholdAbs *decimal.Decimal `gorm:"column:alert_threshold_abs;type:numeric(12,3)"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
