package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/speccom/fieldproof-backend/pkg/enums"
	"github.com/speccom/fieldproof-backend/pkg/types"
)

// SlotPhoto is the proof photo held by one slot of a splice location.
// Writes are idempotent upserts on (splice_location_id, slot_key).
type SlotPhoto struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SpliceLocationID uuid.UUID         `gorm:"column:splice_location_id;type:uuid;not null;uniqueIndex:idx_slot_photos_location_slot"`
	SlotKey          string            `gorm:"column:slot_key;not null;uniqueIndex:idx_slot_photos_location_slot"`
	StoragePath      string            `gorm:"column:storage_path;not null"`
	CapturedAt       *time.Time        `gorm:"column:captured_at"`
	GPS              *types.GeoPoint   `gorm:"column:gps;type:geography(Point,4326)"`
	GPSAccuracyM     *float64          `gorm:"column:gps_accuracy_m"`
	Backfilled       bool              `gorm:"column:backfilled;not null;default:false"`
	Source           enums.PhotoSource `gorm:"column:source;type:photo_source;not null;default:'live'"`
	UploadedBy       *uuid.UUID        `gorm:"column:uploaded_by;type:uuid"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
