package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/speccom/fieldproof-backend/pkg/types"
)

// ProofUpload is the audit row written alongside each usage submission
// that carried photographic proof.
type ProofUpload struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UsageEventID     uuid.UUID       `gorm:"column:usage_event_id;type:uuid;not null"`
	PhotoPath        string          `gorm:"column:photo_path;not null"`
	GPS              *types.GeoPoint `gorm:"column:gps;type:geography(Point,4326)"`
	ClientCapturedAt *time.Time      `gorm:"column:client_captured_at"`
	JobNumber        *string         `gorm:"column:job_number"`
	UploadedBy       *uuid.UUID      `gorm:"column:uploaded_by;type:uuid"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
