package completion

import (
	"github.com/speccom/fieldproof-backend/internal/slots"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
)

// Completion percentages. Both checklist halves done scores 100, one
// half 60, neither 15.
const (
	PercentFull    = 100
	PercentPartial = 60
	PercentStarted = 15
)

// LocationState is the slice of a splice location the evaluator needs.
type LocationState struct {
	Completed     bool
	TerminalPorts int
	Populated     slots.Set
}

// InventoryState is one checklist row's completion flag.
type InventoryState struct {
	Completed bool
}

// UsageState is the proof surface of one usage event.
type UsageState struct {
	ProofRequired      bool
	Camera             bool
	HasPhotoPath       bool
	HasGPS             bool
	HasServerTimestamp bool
}

// NodeState aggregates everything the evaluator reads for one node.
type NodeState struct {
	ReadyForBilling bool
	Locations       []LocationState
	Inventory       []InventoryState
	Usage           []UsageState
}

// Completion carries the derived completion booleans and percent.
type Completion struct {
	LocOK   bool `json:"loc_ok"`
	InvOK   bool `json:"inv_ok"`
	Percent int  `json:"percent"`
}

// Proof carries the derived proof booleans.
type Proof struct {
	LocPhotosOK  bool `json:"loc_photos_ok"`
	UsageProofOK bool `json:"usage_proof_ok"`
	PhotosOK     bool `json:"photos_ok"`
}

// Snapshot is the full derived view for a node. The usage worker caches
// it per node so concurrent viewers converge.
type Snapshot struct {
	Completion      Completion `json:"completion"`
	Proof           Proof      `json:"proof"`
	BillingEligible bool       `json:"billing_eligible"`
}

// NodeCompletion derives the completion percent from the location and
// inventory checklists. Empty checklists never count as done.
func NodeCompletion(n NodeState) Completion {
	locOK := len(n.Locations) > 0
	for _, loc := range n.Locations {
		if !loc.Completed {
			locOK = false
			break
		}
	}

	invOK := len(n.Inventory) > 0
	for _, item := range n.Inventory {
		if !item.Completed {
			invOK = false
			break
		}
	}

	percent := PercentStarted
	switch {
	case locOK && invOK:
		percent = PercentFull
	case locOK || invOK:
		percent = PercentPartial
	}

	return Completion{LocOK: locOK, InvOK: invOK, Percent: percent}
}

// ProofStatus derives photo and usage-proof completeness. A usage event
// is missing proof when it asserts camera capture but lacks any of
// {photo path, GPS, server-confirmed timestamp}, or when it was
// submitted without camera=true at all while proof is required.
func ProofStatus(n NodeState) Proof {
	locPhotosOK := true
	for _, loc := range n.Locations {
		if !slots.HasAllRequired(loc.Populated, loc.TerminalPorts) {
			locPhotosOK = false
			break
		}
	}

	usageProofOK := true
	for _, u := range n.Usage {
		if usageMissingProof(u) {
			usageProofOK = false
			break
		}
	}

	return Proof{
		LocPhotosOK:  locPhotosOK,
		UsageProofOK: usageProofOK,
		PhotosOK:     locPhotosOK && usageProofOK,
	}
}

func usageMissingProof(u UsageState) bool {
	if !u.ProofRequired {
		return false
	}
	if !u.Camera {
		return true
	}
	return !u.HasPhotoPath || !u.HasGPS || !u.HasServerTimestamp
}

// BillingEligible is the sole billing gate: full completion, the ready
// flag, and complete proof. Only the owner-override path may bypass it.
func BillingEligible(n NodeState) bool {
	return NodeCompletion(n).Percent == PercentFull &&
		n.ReadyForBilling &&
		ProofStatus(n).PhotosOK
}

// Evaluate derives the full snapshot in one pass.
func Evaluate(n NodeState) Snapshot {
	comp := NodeCompletion(n)
	proof := ProofStatus(n)
	return Snapshot{
		Completion:      comp,
		Proof:           proof,
		BillingEligible: comp.Percent == PercentFull && n.ReadyForBilling && proof.PhotosOK,
	}
}

// LocationStateFrom projects a stored location and its photos.
func LocationStateFrom(loc models.SpliceLocation, photos []models.SlotPhoto) LocationState {
	populated := make(slots.Set, len(photos))
	for _, photo := range photos {
		if key, err := slots.ParseSlotKey(photo.SlotKey); err == nil {
			populated[key] = true
		}
	}
	return LocationState{
		Completed:     loc.Completed,
		TerminalPorts: slots.NormalizePorts(loc.TerminalPorts),
		Populated:     populated,
	}
}

// UsageStateFrom projects a stored usage event.
func UsageStateFrom(event models.UsageEvent) UsageState {
	return UsageState{
		ProofRequired:      event.ProofRequired,
		Camera:             event.Camera,
		HasPhotoPath:       event.PhotoPath != nil && *event.PhotoPath != "",
		HasGPS:             event.GPS != nil,
		HasServerTimestamp: event.ServerConfirmedAt != nil,
	}
}
