package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/pkg/enums"
	"github.com/speccom/fieldproof-backend/pkg/types"
)

// UsageEvent records one materials-usage submission. Rows are immutable
// after insert except for server-side status progression.
type UsageEvent struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NodeID            uuid.UUID         `gorm:"column:node_id;type:uuid;not null"`
	InventoryItemID   uuid.UUID         `gorm:"column:inventory_item_id;type:uuid;not null"`
	UnitType          string            `gorm:"column:unit_type;not null"`
	Quantity          decimal.Decimal   `gorm:"column:quantity;type:numeric(12,3);not null"`
	Status            enums.UsageStatus `gorm:"column:status;type:usage_status;not null;default:'needs_approval'"`
	ProofRequired     bool              `gorm:"column:proof_required;not null;default:true"`
	Camera            bool              `gorm:"column:camera;not null;default:false"`
	PhotoPath         *string           `gorm:"column:photo_path"`
	GPS               *types.GeoPoint   `gorm:"column:gps;type:geography(Point,4326)"`
	ClientCapturedAt  *time.Time        `gorm:"column:client_captured_at"`
	ServerConfirmedAt *time.Time        `gorm:"column:server_confirmed_at"`
	JobNumber         *string           `gorm:"column:job_number"`
	SubmittedBy       *uuid.UUID        `gorm:"column:submitted_by;type:uuid"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
