package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/internal/completion"
	"github.com/speccom/fieldproof-backend/internal/slots"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
	dbtypes "github.com/speccom/fieldproof-backend/pkg/db/types"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/storage/gcs"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines node and splice-location lifecycle operations.
type Service interface {
	StartNode(ctx context.Context, input StartNodeInput) error
	CompleteNode(ctx context.Context, input CompleteNodeInput) error
	MarkReady(ctx context.Context, input MarkReadyInput) error
	NodeView(ctx context.Context, nodeID uuid.UUID) (*NodeView, error)
	CreateLocation(ctx context.Context, input CreateLocationInput) (*models.SpliceLocation, error)
	UpdateLocation(ctx context.Context, input UpdateLocationInput) error
	SetLocationCompleted(ctx context.Context, input SetLocationCompletedInput) error
	DeleteLocation(ctx context.Context, input DeleteLocationInput) error
	AttachSlotPhoto(ctx context.Context, input AttachSlotPhotoInput) (*models.SlotPhoto, error)
	SlotPhotoURL(ctx context.Context, locationID uuid.UUID, slotKey string) (string, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	photos    gcs.ObjectStore
	bucket    string
	urlExpiry time.Duration
	now       func() time.Time
}

// NewService builds a nodes service with the required dependencies.
func NewService(repo Repository, tx txRunner, photos gcs.ObjectStore, bucket string, urlExpiry time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("nodes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if photos == nil {
		return nil, fmt.Errorf("photo object store required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("photo bucket required")
	}
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &service{
		repo:      repo,
		tx:        tx,
		photos:    photos,
		bucket:    bucket,
		urlExpiry: urlExpiry,
		now:       time.Now,
	}, nil
}

func (s *service) StartNode(ctx context.Context, input StartNodeInput) error {
	if input.NodeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		node, err := repo.FindNode(ctx, input.NodeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
		}
		if node.Status == enums.NodeStatusActive {
			return nil
		}
		if node.Status == enums.NodeStatusComplete {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "node is already complete")
		}

		// Advisory: read-then-write, two concurrent starts can both pass.
		active, err := repo.FindActiveNodeInProject(ctx, node.ProjectID, node.ID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active node")
		}
		if active != nil {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("node %s is already active in this project", active.Number))
		}

		updates := map[string]any{
			"status":     enums.NodeStatusActive,
			"started_at": s.now().UTC(),
		}
		if err := repo.UpdateNode(ctx, node.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start node")
		}
		return nil
	})
}

func (s *service) CompleteNode(ctx context.Context, input CompleteNodeInput) error {
	if input.NodeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.ActorRoleOwner && input.ActorRole != enums.ActorRolePrime {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not complete a node")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		node, err := repo.FindNode(ctx, input.NodeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
		}
		if node.Status == enums.NodeStatusComplete {
			return nil
		}

		state, err := loadNodeState(ctx, repo, node)
		if err != nil {
			return err
		}
		if !completion.ProofStatus(*state).PhotosOK {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "proof photos incomplete")
		}

		updates := map[string]any{
			"status":       enums.NodeStatusComplete,
			"completed_at": s.now().UTC(),
		}
		if err := repo.UpdateNode(ctx, node.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete node")
		}
		return nil
	})
}

func (s *service) MarkReady(ctx context.Context, input MarkReadyInput) error {
	if input.NodeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.IsBillingManager() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not change billing readiness")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		node, err := repo.FindNode(ctx, input.NodeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
		}
		// Setting the flag consults the evaluator. Clearing it is always
		// allowed so a manager can walk a premature mark back.
		if input.Ready {
			state, err := loadNodeState(ctx, repo, node)
			if err != nil {
				return err
			}
			comp := completion.NodeCompletion(*state)
			if !comp.LocOK || !comp.InvOK {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "location and inventory checklists incomplete")
			}
			if !completion.ProofStatus(*state).PhotosOK {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "proof photos incomplete")
			}
		}
		updates := map[string]any{"ready_for_billing": input.Ready}
		if err := repo.UpdateNode(ctx, input.NodeID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update billing readiness")
		}
		return nil
	})
}

func (s *service) NodeView(ctx context.Context, nodeID uuid.UUID) (*NodeView, error) {
	if nodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}

	node, err := s.repo.FindNode(ctx, nodeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
	}

	locations, err := s.repo.FindLocationsByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load locations")
	}
	photosByLocation, err := s.repo.FindSlotPhotosByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot photos")
	}
	inventory, err := s.repo.FindInventoryByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	events, err := s.repo.FindUsageEventsByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load usage events")
	}

	state := buildNodeState(node, locations, photosByLocation, inventory, events)
	views := make([]LocationView, 0, len(locations))
	for i, loc := range locations {
		locked, err := s.locationEditLocked(ctx, s.repo, loc)
		if err != nil {
			return nil, err
		}
		views = append(views, buildLocationView(loc, i, photosByLocation[loc.ID], locked))
	}

	return &NodeView{
		ID:              node.ID,
		Number:          node.Number,
		Status:          node.Status,
		ReadyForBilling: node.ReadyForBilling,
		Snapshot:        completion.Evaluate(state),
		Locations:       views,
	}, nil
}

func (s *service) CreateLocation(ctx context.Context, input CreateLocationInput) (*models.SpliceLocation, error) {
	if input.NodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var created *models.SpliceLocation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindNode(ctx, input.NodeID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
		}
		count, err := repo.CountLocationsByNode(ctx, input.NodeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count locations")
		}

		location := &models.SpliceLocation{
			NodeID:          input.NodeID,
			Name:            normalizeName(input.Name),
			TerminalPorts:   slots.NormalizePorts(input.TerminalPorts),
			SortOrder:       int(count),
			WorkCodes:       parseWorkCodes(input.WorkCodes),
			WorkDescription: input.WorkDescription,
		}
		created, err = repo.CreateLocation(ctx, location)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) UpdateLocation(ctx context.Context, input UpdateLocationInput) error {
	if input.LocationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		location, err := repo.FindLocation(ctx, input.LocationID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "location no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
		}

		locked, err := s.locationEditLocked(ctx, repo, *location)
		if err != nil {
			return err
		}
		if locked {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "location is billing-locked")
		}

		updates := map[string]any{}
		if input.Name != nil {
			updates["name"] = normalizeName(input.Name)
		}
		if input.TerminalPorts != nil {
			updates["terminal_ports"] = slots.NormalizePorts(*input.TerminalPorts)
		}
		if input.WorkCodes != nil {
			updates["work_codes"] = parseWorkCodes(*input.WorkCodes)
		}
		if input.WorkDescription != nil {
			updates["work_description"] = input.WorkDescription
		}
		if len(updates) == 0 {
			return nil
		}
		if err := repo.UpdateLocation(ctx, location.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location")
		}
		return nil
	})
}

func (s *service) SetLocationCompleted(ctx context.Context, input SetLocationCompletedInput) error {
	if input.LocationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		location, err := repo.FindLocation(ctx, input.LocationID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "location no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
		}
		if location.Completed == input.Completed {
			return nil
		}

		if input.Completed {
			photos, err := repo.FindSlotPhotosByLocation(ctx, location.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot photos")
			}
			populated := populatedSet(photos)
			if !slots.HasAllRequired(populated, location.TerminalPorts) {
				missing := slots.Missing(populated, location.TerminalPorts)
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("required photo slots missing: %s", joinKeys(missing)))
			}
		}

		if err := repo.UpdateLocation(ctx, location.ID, map[string]any{"completed": input.Completed}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location")
		}
		return nil
	})
}

func (s *service) DeleteLocation(ctx context.Context, input DeleteLocationInput) error {
	if input.LocationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.ActorRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may delete a location")
	}

	var orphanedPaths []string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		location, err := repo.FindLocation(ctx, input.LocationID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "location no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
		}

		locked, err := s.locationEditLocked(ctx, repo, *location)
		if err != nil {
			return err
		}
		if locked {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "location is billing-locked")
		}

		photos, err := repo.FindSlotPhotosByLocation(ctx, location.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot photos")
		}
		for _, photo := range photos {
			orphanedPaths = append(orphanedPaths, photo.StoragePath)
		}

		if err := repo.DeleteSlotPhotosByLocation(ctx, location.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete slot photos")
		}
		if err := repo.DeleteLocation(ctx, location.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete location")
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Object cleanup happens after commit; a missing object is fine.
	for _, path := range orphanedPaths {
		if err := s.photos.DeleteObject(ctx, s.bucket, path); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete photo object")
		}
	}
	return nil
}

func (s *service) AttachSlotPhoto(ctx context.Context, input AttachSlotPhotoInput) (*models.SlotPhoto, error) {
	if input.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	key, err := slots.ParseSlotKey(input.SlotKey)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo body required")
	}
	if input.Source == enums.PhotoSourceLive {
		if !input.Camera {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "camera access required; gallery uploads are not allowed")
		}
		if input.GPS == nil || input.GPS.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "GPS required")
		}
		if input.CapturedAt == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capture timestamp required")
		}
	}

	location, err := s.repo.FindLocation(ctx, input.LocationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	locked, err := s.locationEditLocked(ctx, s.repo, *location)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "location is billing-locked")
	}

	objectPath := s.photoObjectPath(location.NodeID, location.ID, key)
	contentType := input.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := s.photos.UploadObject(ctx, s.bucket, objectPath, contentType, input.Body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload photo")
	}

	photo := &models.SlotPhoto{
		SpliceLocationID: location.ID,
		SlotKey:          string(key),
		StoragePath:      objectPath,
		CapturedAt:       input.CapturedAt,
		GPS:              input.GPS,
		GPSAccuracyM:     input.GPSAccuracyM,
		Backfilled:       input.Backfilled,
		Source:           input.Source,
		UploadedBy:       &input.ActorUserID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stored, err := repo.UpsertSlotPhoto(ctx, photo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store slot photo")
		}
		photo = stored
		return nil
	})
	if err != nil {
		// Roll back the optimistic object write before surfacing.
		_ = s.photos.DeleteObject(ctx, s.bucket, objectPath)
		return nil, err
	}
	return photo, nil
}

func (s *service) SlotPhotoURL(ctx context.Context, locationID uuid.UUID, slotKey string) (string, error) {
	if locationID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	key, err := slots.ParseSlotKey(slotKey)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	photos, err := s.repo.FindSlotPhotosByLocation(ctx, locationID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot photos")
	}
	for _, photo := range photos {
		if photo.SlotKey == string(key) {
			url, err := s.photos.SignedReadURL(s.bucket, photo.StoragePath, s.urlExpiry)
			if err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign photo url")
			}
			return url, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeNotFound, "slot photo not found")
}

func (s *service) locationEditLocked(ctx context.Context, repo Repository, location models.SpliceLocation) (bool, error) {
	invoice, err := repo.FindInvoiceByLocation(ctx, location.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if !invoice.Status.LocksEdits() {
		return false, nil
	}
	override, err := repo.FindOpenOverride(ctx, location.NodeID, enums.OverrideTypeBillingUnlocked)
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load override")
	}
	return override == nil, nil
}

func (s *service) photoObjectPath(nodeID, locationID uuid.UUID, key slots.SlotKey) string {
	return fmt.Sprintf("proof/%s/%s/%s-%d.jpg", nodeID, locationID, key, s.now().UTC().Unix())
}

func loadNodeState(ctx context.Context, repo Repository, node *models.Node) (*completion.NodeState, error) {
	locations, err := repo.FindLocationsByNode(ctx, node.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load locations")
	}
	photosByLocation, err := repo.FindSlotPhotosByNode(ctx, node.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot photos")
	}
	inventory, err := repo.FindInventoryByNode(ctx, node.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	events, err := repo.FindUsageEventsByNode(ctx, node.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load usage events")
	}
	state := buildNodeState(node, locations, photosByLocation, inventory, events)
	return &state, nil
}

func buildNodeState(
	node *models.Node,
	locations []models.SpliceLocation,
	photosByLocation map[uuid.UUID][]models.SlotPhoto,
	inventory []models.InventoryCheckItem,
	events []models.UsageEvent,
) completion.NodeState {
	state := completion.NodeState{ReadyForBilling: node.ReadyForBilling}
	for _, loc := range locations {
		state.Locations = append(state.Locations, completion.LocationStateFrom(loc, photosByLocation[loc.ID]))
	}
	for _, item := range inventory {
		state.Inventory = append(state.Inventory, completion.InventoryState{Completed: item.Completed})
	}
	for _, event := range events {
		state.Usage = append(state.Usage, completion.UsageStateFrom(event))
	}
	return state
}

func buildLocationView(loc models.SpliceLocation, position int, photos []models.SlotPhoto, locked bool) LocationView {
	populated := populatedSet(photos)
	backfilled := map[string]bool{}
	for _, photo := range photos {
		if photo.Backfilled {
			backfilled[photo.SlotKey] = true
		}
	}

	required := slots.Required(loc.TerminalPorts)
	requiredSet := slots.Set{}
	views := make([]SlotView, 0, len(required))
	for _, key := range required {
		requiredSet[key] = true
		views = append(views, SlotView{
			Key:        key,
			Populated:  populated[key],
			Required:   true,
			Backfilled: backfilled[string(key)],
		})
	}
	for _, key := range slots.Extras(populated, loc.TerminalPorts) {
		views = append(views, SlotView{
			Key:        key,
			Populated:  true,
			Backfilled: backfilled[string(key)],
		})
	}

	uploaded, requiredCount := slots.Progress(populated, loc.TerminalPorts)
	return LocationView{
		ID:            loc.ID,
		Name:          displayName(loc, position),
		TerminalPorts: loc.TerminalPorts,
		Completed:     loc.Completed,
		EditLocked:    locked,
		Uploaded:      uploaded,
		Required:      requiredCount,
		Slots:         views,
	}
}

func displayName(loc models.SpliceLocation, position int) string {
	if loc.Name != nil && strings.TrimSpace(*loc.Name) != "" {
		return *loc.Name
	}
	return fmt.Sprintf("Splice location %d", position+1)
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseWorkCodes(raw string) dbtypes.StringArray {
	parts := strings.Split(raw, ",")
	codes := make(dbtypes.StringArray, 0, len(parts))
	for _, part := range parts {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

func populatedSet(photos []models.SlotPhoto) slots.Set {
	populated := make(slots.Set, len(photos))
	for _, photo := range photos {
		if key, err := slots.ParseSlotKey(photo.SlotKey); err == nil {
			populated[key] = true
		}
	}
	return populated
}

func joinKeys(keys []slots.SlotKey) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, string(key))
	}
	return strings.Join(parts, ", ")
}
