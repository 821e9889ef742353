package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// Alert is opened when remaining allowance for a (node, unit type)
// crosses its threshold. At most one open alert exists per pair.
type Alert struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NodeID       uuid.UUID         `gorm:"column:node_id;type:uuid;not null"`
	UnitType     string            `gorm:"column:unit_type;not null"`
	Status       enums.AlertStatus `gorm:"column:status;type:alert_status;not null;default:'open'"`
	AllowedQty   decimal.Decimal   `gorm:"column:allowed_qty;type:numeric(12,3);not null"`
	UsedQty      decimal.Decimal   `gorm:"column:used_qty;type:numeric(12,3);not null"`
	RemainingQty decimal.Decimal   `gorm:"column:remaining_qty;type:numeric(12,3);not null"`
	Severity     string            `gorm:"column:severity;not null;default:'warning'"`
	ResolvedAt   *time.Time        `gorm:"column:resolved_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
