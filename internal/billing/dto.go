package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// EnsureInvoiceInput identifies the splice location to invoice. At most
// one invoice exists per (project, location) pair; a repeated call
// returns the existing row.
type EnsureInvoiceInput struct {
	LocationID  uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

type MarkInvoiceReadyInput struct {
	InvoiceID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

type UpdateInvoiceStatusInput struct {
	InvoiceID   uuid.UUID
	Next        enums.InvoiceStatus
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

type UpdateInvoiceNotesInput struct {
	InvoiceID   uuid.UUID
	Notes       *string
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// AddLineItemInput adds one priced line. When WorkCodeID is set the
// description, unit and rate default from the code (rate card first,
// then the code's default rate). A non-nil Rate is a hand edit and is
// restricted to billing managers.
type AddLineItemInput struct {
	InvoiceID   uuid.UUID
	WorkCodeID  *uuid.UUID
	Description string
	Unit        string
	Quantity    decimal.Decimal
	Rate        *decimal.Decimal
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// UpdateLineItemInput mutates one line; nil fields are left untouched.
type UpdateLineItemInput struct {
	ItemID      uuid.UUID
	Description *string
	Quantity    *decimal.Decimal
	Rate        *decimal.Decimal
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

type DeleteLineItemInput struct {
	ItemID      uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

type ImportApprovedUsageInput struct {
	InvoiceID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

type CreateOverrideInput struct {
	NodeID      uuid.UUID
	Type        enums.OverrideType
	Reason      string
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// LineItemView is the line-item shape handed to the UI layer.
type LineItemView struct {
	ID          uuid.UUID       `json:"id"`
	WorkCodeID  *uuid.UUID      `json:"work_code_id,omitempty"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	SortOrder   int             `json:"sort_order"`
}

// InvoiceView is the invoice shape handed to the UI layer.
type InvoiceView struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Status          enums.InvoiceStatus `json:"status"`
	Notes           *string             `json:"notes,omitempty"`
	EditLocked      bool                `json:"edit_locked"`
	BillingUnlocked bool                `json:"billing_unlocked"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	Total           decimal.Decimal     `json:"total"`
	Items           []LineItemView      `json:"items"`
}

// InvoiceCSV is the flat row view-model for CSV export; rendering and
// delivery are left to the caller.
type InvoiceCSV struct {
	Filename string
	Rows     [][]string
}
