package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups the nodes a crew works under one contract.
type Project struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	JobNumber string    `gorm:"column:job_number;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
