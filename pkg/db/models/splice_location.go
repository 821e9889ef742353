package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/speccom/fieldproof-backend/pkg/db/types"
)

// SpliceLocation is a physical point within a node. Name falls back to
// a positional default when null. TerminalPorts is clamped to [1,8] by
// the service layer before it reaches this row.
type SpliceLocation struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NodeID          uuid.UUID           `gorm:"column:node_id;type:uuid;not null"`
	Name            *string             `gorm:"column:name"`
	TerminalPorts   int                 `gorm:"column:terminal_ports;not null;default:2"`
	Completed       bool                `gorm:"column:completed;not null;default:false"`
	SortOrder       int                 `gorm:"column:sort_order;not null;default:0"`
	WorkCodes       dbtypes.StringArray `gorm:"column:work_codes;type:text[]"`
	WorkDescription *string             `gorm:"column:work_description"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
