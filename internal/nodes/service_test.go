package nodes

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/internal/slots"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/types"
)

type stubNodesRepo struct {
	nodes             map[uuid.UUID]*models.Node
	locations         map[uuid.UUID]*models.SpliceLocation
	photos            map[uuid.UUID]map[string]*models.SlotPhoto
	inventory         map[uuid.UUID][]models.InventoryCheckItem
	events            map[uuid.UUID][]models.UsageEvent
	invoiceByLocation map[uuid.UUID]*models.Invoice
	overrides         map[uuid.UUID][]models.OwnerOverride
	nodeUpdates       map[string]any
	locationUpdates   map[string]any
	upsertErr         error
	deletedLocationID uuid.UUID
}

func newStubNodesRepo() *stubNodesRepo {
	return &stubNodesRepo{
		nodes:             map[uuid.UUID]*models.Node{},
		locations:         map[uuid.UUID]*models.SpliceLocation{},
		photos:            map[uuid.UUID]map[string]*models.SlotPhoto{},
		inventory:         map[uuid.UUID][]models.InventoryCheckItem{},
		events:            map[uuid.UUID][]models.UsageEvent{},
		invoiceByLocation: map[uuid.UUID]*models.Invoice{},
		overrides:         map[uuid.UUID][]models.OwnerOverride{},
	}
}

func (s *stubNodesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNodesRepo) FindNode(ctx context.Context, nodeID uuid.UUID) (*models.Node, error) {
	if node, ok := s.nodes[nodeID]; ok {
		copied := *node
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubNodesRepo) FindActiveNodeInProject(ctx context.Context, projectID, excludeNodeID uuid.UUID) (*models.Node, error) {
	for _, node := range s.nodes {
		if node.ProjectID == projectID && node.Status == enums.NodeStatusActive && node.ID != excludeNodeID {
			copied := *node
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubNodesRepo) UpdateNode(ctx context.Context, nodeID uuid.UUID, updates map[string]any) error {
	s.nodeUpdates = updates
	node, ok := s.nodes[nodeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.NodeStatus); ok {
		node.Status = status
	}
	if ready, ok := updates["ready_for_billing"].(bool); ok {
		node.ReadyForBilling = ready
	}
	return nil
}

func (s *stubNodesRepo) FindLocation(ctx context.Context, locationID uuid.UUID) (*models.SpliceLocation, error) {
	if loc, ok := s.locations[locationID]; ok {
		copied := *loc
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubNodesRepo) FindLocationsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.SpliceLocation, error) {
	var out []models.SpliceLocation
	for _, loc := range s.locations {
		if loc.NodeID == nodeID {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (s *stubNodesRepo) CountLocationsByNode(ctx context.Context, nodeID uuid.UUID) (int64, error) {
	var count int64
	for _, loc := range s.locations {
		if loc.NodeID == nodeID {
			count++
		}
	}
	return count, nil
}

func (s *stubNodesRepo) CreateLocation(ctx context.Context, location *models.SpliceLocation) (*models.SpliceLocation, error) {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	s.locations[location.ID] = location
	return location, nil
}

func (s *stubNodesRepo) UpdateLocation(ctx context.Context, locationID uuid.UUID, updates map[string]any) error {
	s.locationUpdates = updates
	loc, ok := s.locations[locationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if completed, ok := updates["completed"].(bool); ok {
		loc.Completed = completed
	}
	if ports, ok := updates["terminal_ports"].(int); ok {
		loc.TerminalPorts = ports
	}
	return nil
}

func (s *stubNodesRepo) DeleteLocation(ctx context.Context, locationID uuid.UUID) error {
	s.deletedLocationID = locationID
	delete(s.locations, locationID)
	return nil
}

func (s *stubNodesRepo) FindSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) ([]models.SlotPhoto, error) {
	var out []models.SlotPhoto
	for _, photo := range s.photos[locationID] {
		out = append(out, *photo)
	}
	return out, nil
}

func (s *stubNodesRepo) FindSlotPhotosByNode(ctx context.Context, nodeID uuid.UUID) (map[uuid.UUID][]models.SlotPhoto, error) {
	out := map[uuid.UUID][]models.SlotPhoto{}
	for locationID, byKey := range s.photos {
		loc, ok := s.locations[locationID]
		if !ok || loc.NodeID != nodeID {
			continue
		}
		for _, photo := range byKey {
			out[locationID] = append(out[locationID], *photo)
		}
	}
	return out, nil
}

func (s *stubNodesRepo) UpsertSlotPhoto(ctx context.Context, photo *models.SlotPhoto) (*models.SlotPhoto, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	byKey := s.photos[photo.SpliceLocationID]
	if byKey == nil {
		byKey = map[string]*models.SlotPhoto{}
		s.photos[photo.SpliceLocationID] = byKey
	}
	if existing, ok := byKey[photo.SlotKey]; ok {
		photo.ID = existing.ID
	}
	byKey[photo.SlotKey] = photo
	return photo, nil
}

func (s *stubNodesRepo) DeleteSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) error {
	delete(s.photos, locationID)
	return nil
}

func (s *stubNodesRepo) FindInventoryByNode(ctx context.Context, nodeID uuid.UUID) ([]models.InventoryCheckItem, error) {
	return s.inventory[nodeID], nil
}

func (s *stubNodesRepo) FindUsageEventsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.UsageEvent, error) {
	return s.events[nodeID], nil
}

func (s *stubNodesRepo) FindInvoiceByLocation(ctx context.Context, locationID uuid.UUID) (*models.Invoice, error) {
	if invoice, ok := s.invoiceByLocation[locationID]; ok {
		copied := *invoice
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubNodesRepo) FindOpenOverride(ctx context.Context, nodeID uuid.UUID, overrideType enums.OverrideType) (*models.OwnerOverride, error) {
	for _, override := range s.overrides[nodeID] {
		if override.Type == overrideType {
			copied := override
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubObjectStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
}

func (s *stubObjectStore) UploadObject(ctx context.Context, bucket, object, contentType string, body io.Reader) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, object)
	return nil
}

func (s *stubObjectStore) DeleteObject(ctx context.Context, bucket, object string) error {
	s.deletes = append(s.deletes, object)
	return nil
}

func (s *stubObjectStore) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	return "https://storage.googleapis.com/" + bucket + "/" + object + "?sig=x", nil
}

func newTestService(t *testing.T, repo *stubNodesRepo, store *stubObjectStore) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, store, "fieldproof-photos", time.Minute)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func seedNode(repo *stubNodesRepo, status enums.NodeStatus) *models.Node {
	node := &models.Node{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Number:    "N-101",
		Status:    status,
	}
	repo.nodes[node.ID] = node
	return node
}

func seedLocation(repo *stubNodesRepo, nodeID uuid.UUID, ports int) *models.SpliceLocation {
	loc := &models.SpliceLocation{
		ID:            uuid.New(),
		NodeID:        nodeID,
		TerminalPorts: ports,
	}
	repo.locations[loc.ID] = loc
	return loc
}

func seedPhoto(repo *stubNodesRepo, locationID uuid.UUID, slotKey string) {
	byKey := repo.photos[locationID]
	if byKey == nil {
		byKey = map[string]*models.SlotPhoto{}
		repo.photos[locationID] = byKey
	}
	now := time.Now()
	lat, lng := 35.1, -80.8
	byKey[slotKey] = &models.SlotPhoto{
		ID:               uuid.New(),
		SpliceLocationID: locationID,
		SlotKey:          slotKey,
		StoragePath:      fmt.Sprintf("proof/%s/%s.jpg", locationID, slotKey),
		CapturedAt:       &now,
		GPS:              &types.GeoPoint{Lat: lat, Lng: lng},
		Source:           enums.PhotoSourceLive,
	}
}

func fillRequiredSlots(repo *stubNodesRepo, loc *models.SpliceLocation) {
	for n := 1; n <= loc.TerminalPorts; n++ {
		seedPhoto(repo, loc.ID, fmt.Sprintf("port_%d", n))
	}
	seedPhoto(repo, loc.ID, "splice_completion")
}

// seedCompleteProof gives the node a fully completed, fully proven
// state: done checklists and every required slot photo in place.
func seedCompleteProof(repo *stubNodesRepo, node *models.Node) {
	loc := seedLocation(repo, node.ID, 2)
	loc.Completed = true
	fillRequiredSlots(repo, loc)
	repo.inventory[node.ID] = []models.InventoryCheckItem{{ID: uuid.New(), NodeID: node.ID, Completed: true}}
}

func TestStartNodeActivates(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusNotStarted)
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.StartNode(context.Background(), StartNodeInput{
		NodeID:      node.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.nodes[node.ID].Status != enums.NodeStatusActive {
		t.Fatalf("expected node active, got %s", repo.nodes[node.ID].Status)
	}
	if _, ok := repo.nodeUpdates["started_at"]; !ok {
		t.Fatal("expected started_at to be stamped")
	}
}

func TestStartNodeNamesConflictingNode(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusNotStarted)
	active := &models.Node{
		ID:        uuid.New(),
		ProjectID: node.ProjectID,
		Number:    "N-204",
		Status:    enums.NodeStatusActive,
	}
	repo.nodes[active.ID] = active
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.StartNode(context.Background(), StartNodeInput{
		NodeID:      node.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(appErr.Error(), "N-204") {
		t.Fatalf("expected conflicting node number in message, got %q", appErr.Error())
	}
	if repo.nodes[node.ID].Status != enums.NodeStatusNotStarted {
		t.Fatal("node status must not change on refusal")
	}
}

func TestStartNodeIdempotentWhenActive(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.StartNode(context.Background(), StartNodeInput{
		NodeID:      node.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	if err != nil {
		t.Fatalf("expected idempotent success got %v", err)
	}
}

func TestCompleteNodeRoleGate(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.CompleteNode(context.Background(), CompleteNodeInput{
		NodeID:      node.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCompleteNodeBlockedWithoutProof(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	seedPhoto(repo, loc.ID, "port_1")
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.CompleteNode(context.Background(), CompleteNodeInput{
		NodeID:      node.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleOwner,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.nodes[node.ID].Status != enums.NodeStatusActive {
		t.Fatal("node status must not change while proof is incomplete")
	}
}

func TestCompleteNodeSuccess(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	loc.Completed = true
	fillRequiredSlots(repo, loc)
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.CompleteNode(context.Background(), CompleteNodeInput{
		NodeID:      node.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRolePrime,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.nodes[node.ID].Status != enums.NodeStatusComplete {
		t.Fatalf("expected node complete, got %s", repo.nodes[node.ID].Status)
	}
}

func TestMarkReadyRequiresBillingManager(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	seedCompleteProof(repo, node)
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.MarkReady(context.Background(), MarkReadyInput{
		NodeID:      node.ID,
		Ready:       true,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSub,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	err = svc.MarkReady(context.Background(), MarkReadyInput{
		NodeID:      node.ID,
		Ready:       true,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleTDS,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !repo.nodes[node.ID].ReadyForBilling {
		t.Fatal("expected ready_for_billing set")
	}
}

func TestMarkReadyRejectsIncompleteNode(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	seedPhoto(repo, loc.ID, "port_1")
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.MarkReady(context.Background(), MarkReadyInput{
		NodeID:      node.ID,
		Ready:       true,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleOwner,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if repo.nodes[node.ID].ReadyForBilling {
		t.Fatal("ready_for_billing must stay unset")
	}

	// Checklists done but a proof slot still empty: also refused.
	loc.Completed = true
	repo.inventory[node.ID] = []models.InventoryCheckItem{{ID: uuid.New(), NodeID: node.ID, Completed: true}}
	err = svc.MarkReady(context.Background(), MarkReadyInput{
		NodeID:      node.ID,
		Ready:       true,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleOwner,
	})
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for missing photos, got %v", err)
	}
}

func TestMarkReadyClearAlwaysAllowed(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	node.ReadyForBilling = true
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.MarkReady(context.Background(), MarkReadyInput{
		NodeID:      node.ID,
		Ready:       false,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRolePrime,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.nodes[node.ID].ReadyForBilling {
		t.Fatal("expected ready_for_billing cleared")
	}
}

func TestCreateLocationDefaults(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	svc := newTestService(t, repo, &stubObjectStore{})

	created, err := svc.CreateLocation(context.Background(), CreateLocationInput{
		NodeID:        node.ID,
		TerminalPorts: 0,
		WorkCodes:     " fs-12, splice ,,",
		ActorUserID:   uuid.New(),
		ActorRole:     enums.ActorRoleSplicer,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if created.TerminalPorts != slots.MinPorts {
		t.Fatalf("expected zero ports clamped to %d, got %d", slots.MinPorts, created.TerminalPorts)
	}
	if len(created.WorkCodes) != 2 || created.WorkCodes[0] != "FS-12" || created.WorkCodes[1] != "SPLICE" {
		t.Fatalf("unexpected work codes %v", created.WorkCodes)
	}
	if created.Name != nil {
		t.Fatalf("expected nil name for positional default, got %q", *created.Name)
	}
}

func TestSetLocationCompletedRequiresAllSlots(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	seedPhoto(repo, loc.ID, "port_1")
	svc := newTestService(t, repo, &stubObjectStore{})

	err := svc.SetLocationCompleted(context.Background(), SetLocationCompletedInput{
		LocationID:  loc.ID,
		Completed:   true,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if !strings.Contains(appErr.Error(), "port_2") {
		t.Fatalf("expected missing slot named, got %q", appErr.Error())
	}

	fillRequiredSlots(repo, loc)
	err = svc.SetLocationCompleted(context.Background(), SetLocationCompletedInput{
		LocationID:  loc.ID,
		Completed:   true,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !repo.locations[loc.ID].Completed {
		t.Fatal("expected location completed")
	}

	// Toggling back to incomplete is always allowed.
	err = svc.SetLocationCompleted(context.Background(), SetLocationCompletedInput{
		LocationID:  loc.ID,
		Completed:   false,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	if err != nil {
		t.Fatalf("expected toggle back to succeed, got %v", err)
	}
}

func TestUpdateLocationBillingLock(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	repo.invoiceByLocation[loc.ID] = &models.Invoice{
		ID:     uuid.New(),
		NodeID: node.ID,
		Status: enums.InvoiceStatusReady,
	}
	svc := newTestService(t, repo, &stubObjectStore{})

	ports := 4
	input := UpdateLocationInput{
		LocationID:    loc.ID,
		TerminalPorts: &ports,
		ActorUserID:   uuid.New(),
		ActorRole:     enums.ActorRoleOwner,
	}
	err := svc.UpdateLocation(context.Background(), input)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected billing lock refusal, got %v", err)
	}

	repo.overrides[node.ID] = []models.OwnerOverride{{
		ID:     uuid.New(),
		NodeID: node.ID,
		Type:   enums.OverrideTypeBillingUnlocked,
		Reason: "adjusting ports after audit",
	}}
	if err := svc.UpdateLocation(context.Background(), input); err != nil {
		t.Fatalf("expected override to unlock edits, got %v", err)
	}
	if repo.locations[loc.ID].TerminalPorts != 4 {
		t.Fatalf("expected ports updated, got %d", repo.locations[loc.ID].TerminalPorts)
	}
}

func TestDeleteLocationOwnerOnlyAndCascades(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	fillRequiredSlots(repo, loc)
	store := &stubObjectStore{}
	svc := newTestService(t, repo, store)

	err := svc.DeleteLocation(context.Background(), DeleteLocationInput{
		LocationID:  loc.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRolePrime,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	err = svc.DeleteLocation(context.Background(), DeleteLocationInput{
		LocationID:  loc.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleOwner,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.deletedLocationID != loc.ID {
		t.Fatal("expected location row deleted")
	}
	if len(store.deletes) != 3 {
		t.Fatalf("expected 3 photo objects deleted, got %d", len(store.deletes))
	}
}

func TestAttachSlotPhotoLiveRequiresGPS(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	svc := newTestService(t, repo, &stubObjectStore{})

	now := time.Now()
	_, err := svc.AttachSlotPhoto(context.Background(), AttachSlotPhotoInput{
		LocationID:  loc.ID,
		SlotKey:     "port_1",
		Body:        strings.NewReader("jpeg"),
		Camera:      true,
		Source:      enums.PhotoSourceLive,
		CapturedAt:  &now,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(appErr.Error(), "GPS") {
		t.Fatalf("expected GPS message, got %q", appErr.Error())
	}
}

func TestAttachSlotPhotoRollsBackObjectOnStoreFailure(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	repo.upsertErr = fmt.Errorf("connection reset")
	store := &stubObjectStore{}
	svc := newTestService(t, repo, store)

	now := time.Now()
	_, err := svc.AttachSlotPhoto(context.Background(), AttachSlotPhotoInput{
		LocationID:  loc.ID,
		SlotKey:     "port_1",
		Body:        strings.NewReader("jpeg"),
		Camera:      true,
		Source:      enums.PhotoSourceLive,
		CapturedAt:  &now,
		GPS:         &types.GeoPoint{Lat: 35.1, Lng: -80.8},
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if len(store.uploads) != 1 || len(store.deletes) != 1 {
		t.Fatalf("expected optimistic upload rolled back, uploads=%d deletes=%d", len(store.uploads), len(store.deletes))
	}
	if store.uploads[0] != store.deletes[0] {
		t.Fatal("expected the uploaded object to be the one deleted")
	}
}

func TestAttachSlotPhotoUpsertOverwrites(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	store := &stubObjectStore{}
	svc := newTestService(t, repo, store)

	now := time.Now()
	input := AttachSlotPhotoInput{
		LocationID:  loc.ID,
		SlotKey:     "port_1",
		Body:        strings.NewReader("jpeg"),
		Camera:      true,
		Source:      enums.PhotoSourceLive,
		CapturedAt:  &now,
		GPS:         &types.GeoPoint{Lat: 35.1, Lng: -80.8},
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleSplicer,
	}
	first, err := svc.AttachSlotPhoto(context.Background(), input)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	input.Body = strings.NewReader("jpeg2")
	second, err := svc.AttachSlotPhoto(context.Background(), input)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("expected second upload to overwrite the same slot row")
	}
	if len(repo.photos[loc.ID]) != 1 {
		t.Fatalf("expected a single row for the slot, got %d", len(repo.photos[loc.ID]))
	}
}

func TestNodeViewPositionalNames(t *testing.T) {
	repo := newStubNodesRepo()
	node := seedNode(repo, enums.NodeStatusActive)
	loc := seedLocation(repo, node.ID, 2)
	svc := newTestService(t, repo, &stubObjectStore{})

	view, err := svc.NodeView(context.Background(), node.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(view.Locations) != 1 {
		t.Fatalf("expected one location, got %d", len(view.Locations))
	}
	if view.Locations[0].Name != "Splice location 1" {
		t.Fatalf("expected positional default name, got %q", view.Locations[0].Name)
	}
	if view.Locations[0].Required != 3 {
		t.Fatalf("expected 3 required slots for 2 ports, got %d", view.Locations[0].Required)
	}
	_ = loc
}
