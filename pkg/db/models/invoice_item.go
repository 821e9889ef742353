package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one priced line on an invoice. Amount = Quantity × Rate.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null"`
	WorkCodeID  *uuid.UUID      `gorm:"column:work_code_id;type:uuid"`
	Description string          `gorm:"column:description;not null"`
	Unit        string          `gorm:"column:unit;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null;default:0"`
	Rate        decimal.Decimal `gorm:"column:rate;type:numeric(12,2);not null;default:0"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null;default:0"`
	SortOrder   int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
