package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// OwnerOverride is the append-only audit record relaxing one gate for
// one node. Rows are never updated or deleted.
type OwnerOverride struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NodeID    uuid.UUID          `gorm:"column:node_id;type:uuid;not null"`
	Type      enums.OverrideType `gorm:"column:type;type:override_type;not null"`
	Reason    string             `gorm:"column:reason;not null"`
	CreatedBy *uuid.UUID         `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
