package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// Node is a unit of billable field work. At most one node per project
// should be ACTIVE at a time; the check is advisory (read-then-write).
type Node struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID       uuid.UUID        `gorm:"column:project_id;type:uuid;not null"`
	Number          string           `gorm:"column:number;not null"`
	Status          enums.NodeStatus `gorm:"column:status;type:node_status;not null;default:'NOT_STARTED'"`
	ReadyForBilling bool             `gorm:"column:ready_for_billing;not null;default:false"`
	StartedAt       *time.Time       `gorm:"column:started_at"`
	CompletedAt     *time.Time       `gorm:"column:completed_at"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
