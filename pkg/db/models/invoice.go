package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// Invoice bills one splice location within a project; at most one
// exists per (project, location) pair. Number follows SC-{year}-{seq}.
type Invoice struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID        uuid.UUID           `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_invoices_project_location"`
	SpliceLocationID uuid.UUID           `gorm:"column:splice_location_id;type:uuid;not null;uniqueIndex:idx_invoices_project_location"`
	NodeID           uuid.UUID           `gorm:"column:node_id;type:uuid;not null"`
	Number           string              `gorm:"column:number;not null"`
	IssuedYear       int                 `gorm:"column:issued_year;not null"`
	Sequence         int                 `gorm:"column:sequence;not null"`
	Status           enums.InvoiceStatus `gorm:"column:status;type:invoice_status;not null;default:'draft'"`
	Notes            *string             `gorm:"column:notes"`
	Subtotal         decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Tax              decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Total            decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
