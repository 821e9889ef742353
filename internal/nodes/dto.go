package nodes

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/speccom/fieldproof-backend/internal/completion"
	"github.com/speccom/fieldproof-backend/internal/slots"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	"github.com/speccom/fieldproof-backend/pkg/types"
)

// StartNodeInput opens a node for field work.
type StartNodeInput struct {
	NodeID      uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// CompleteNodeInput closes a node after proof passes.
type CompleteNodeInput struct {
	NodeID      uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// MarkReadyInput flips the node's ready_for_billing flag.
type MarkReadyInput struct {
	NodeID      uuid.UUID
	Ready       bool
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// CreateLocationInput adds a splice location to a node. Name may be
// empty; the positional default is applied at read time.
type CreateLocationInput struct {
	NodeID          uuid.UUID
	Name            *string
	TerminalPorts   int
	WorkCodes       string
	WorkDescription *string
	ActorUserID     uuid.UUID
	ActorRole       enums.ActorRole
}

// UpdateLocationInput carries partial edits to a location. Nil fields
// are left untouched.
type UpdateLocationInput struct {
	LocationID      uuid.UUID
	Name            *string
	TerminalPorts   *int
	WorkCodes       *string
	WorkDescription *string
	ActorUserID     uuid.UUID
	ActorRole       enums.ActorRole
}

// SetLocationCompletedInput toggles a location's completed flag.
type SetLocationCompletedInput struct {
	LocationID  uuid.UUID
	Completed   bool
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// DeleteLocationInput removes a location and its photos. Owner only.
type DeleteLocationInput struct {
	LocationID  uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// AttachSlotPhotoInput stores one proof photo into a location slot.
type AttachSlotPhotoInput struct {
	LocationID   uuid.UUID
	SlotKey      string
	Body         io.Reader
	ContentType  string
	Camera       bool
	Source       enums.PhotoSource
	Backfilled   bool
	CapturedAt   *time.Time
	GPS          *types.GeoPoint
	GPSAccuracyM *float64
	ActorUserID  uuid.UUID
	ActorRole    enums.ActorRole
}

// SlotView is one required-or-extra slot with its populated state.
type SlotView struct {
	Key        slots.SlotKey `json:"key"`
	Populated  bool          `json:"populated"`
	Required   bool          `json:"required"`
	Backfilled bool          `json:"backfilled"`
}

// LocationView is the per-location projection handed to callers.
type LocationView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	TerminalPorts int       `json:"terminal_ports"`
	Completed     bool      `json:"completed"`
	EditLocked    bool      `json:"edit_locked"`
	Uploaded      int       `json:"uploaded"`
	Required      int       `json:"required"`
	Slots         []SlotView `json:"slots"`
}

// NodeView bundles the node row with its derived snapshot.
type NodeView struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Status          enums.NodeStatus    `json:"status"`
	ReadyForBilling bool                `json:"ready_for_billing"`
	Snapshot        completion.Snapshot `json:"snapshot"`
	Locations       []LocationView      `json:"locations"`
}
