package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateCard is a named pricing sheet; at most one is active per project.
type RateCard struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RateCardItem overrides one work code's rate under a rate card.
type RateCardItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RateCardID uuid.UUID       `gorm:"column:rate_card_id;type:uuid;not null;uniqueIndex:idx_rate_card_items_card_code"`
	WorkCodeID uuid.UUID       `gorm:"column:work_code_id;type:uuid;not null;uniqueIndex:idx_rate_card_items_card_code"`
	Rate       decimal.Decimal `gorm:"column:rate;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
