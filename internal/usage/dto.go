package usage

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	"github.com/speccom/fieldproof-backend/pkg/types"
)

// ProofInput carries the live-capture evidence attached to a usage
// submission.
type ProofInput struct {
	Camera      bool
	Invalidated bool
	Body        io.Reader
	ContentType string
	GPS         *types.GeoPoint
	CapturedAt  *time.Time
}

// SubmitInput is one materials-usage submission.
type SubmitInput struct {
	NodeID          uuid.UUID
	InventoryItemID uuid.UUID
	Quantity        decimal.Decimal
	ProofRequired   bool
	Proof           ProofInput
	ActorUserID     uuid.UUID
	ActorRole       enums.ActorRole
}

// SubmitResult reports the stored event and the post-submit allowance.
type SubmitResult struct {
	Event       *models.UsageEvent
	Remaining   decimal.Decimal
	AlertOpened bool
}

// ChangeMessage is the payload published on every stored usage event so
// concurrent viewers of the node re-derive their state.
type ChangeMessage struct {
	EventID  uuid.UUID         `json:"event_id"`
	NodeID   uuid.UUID         `json:"node_id"`
	UnitType string            `json:"unit_type"`
	Status   enums.UsageStatus `json:"status"`
	Quantity decimal.Decimal   `json:"quantity"`
}
