package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkCode is a billable code with a default rate; rate cards may
// override the rate per code.
type WorkCode struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string          `gorm:"column:code;not null;uniqueIndex"`
	Description string          `gorm:"column:description;not null"`
	Unit        string          `gorm:"column:unit;not null"`
	DefaultRate decimal.Decimal `gorm:"column:default_rate;type:numeric(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
