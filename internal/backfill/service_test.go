package backfill

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
)

type stubBackfillRepo struct {
	locations map[uuid.UUID]*models.SpliceLocation
	photos    map[uuid.UUID]map[string]*models.SlotPhoto
	overrides map[uuid.UUID][]models.OwnerOverride
	upsertErr error
}

func newStubBackfillRepo() *stubBackfillRepo {
	return &stubBackfillRepo{
		locations: map[uuid.UUID]*models.SpliceLocation{},
		photos:    map[uuid.UUID]map[string]*models.SlotPhoto{},
		overrides: map[uuid.UUID][]models.OwnerOverride{},
	}
}

func (s *stubBackfillRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubBackfillRepo) FindLocation(ctx context.Context, locationID uuid.UUID) (*models.SpliceLocation, error) {
	if loc, ok := s.locations[locationID]; ok {
		copied := *loc
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBackfillRepo) FindOpenOverride(ctx context.Context, nodeID uuid.UUID, overrideType enums.OverrideType) (*models.OwnerOverride, error) {
	for _, override := range s.overrides[nodeID] {
		if override.Type == overrideType {
			copied := override
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBackfillRepo) FindSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) ([]models.SlotPhoto, error) {
	var out []models.SlotPhoto
	for _, photo := range s.photos[locationID] {
		out = append(out, *photo)
	}
	return out, nil
}

func (s *stubBackfillRepo) UpsertSlotPhoto(ctx context.Context, photo *models.SlotPhoto) (*models.SlotPhoto, error) {
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
	return "https://signed/" + object, nil
}

func newTestService(t *testing.T) (Service, *stubBackfillRepo, *stubObjectStore) {
	t.Helper()
	repo := newStubBackfillRepo()
	store := &stubObjectStore{}
	svc, err := NewService(repo, stubTxRunner{}, store, "proof-bucket")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, store
}

func seedLocation(repo *stubBackfillRepo, ports int) *models.SpliceLocation {
	loc := &models.SpliceLocation{
		ID:            uuid.New(),
		NodeID:        uuid.New(),
		TerminalPorts: ports,
	}
	repo.locations[loc.ID] = loc
	return loc
}

func allowBackfill(repo *stubBackfillRepo, nodeID uuid.UUID) {
	repo.overrides[nodeID] = append(repo.overrides[nodeID], models.OwnerOverride{
		ID:     uuid.New(),
		NodeID: nodeID,
		Type:   enums.OverrideTypeBackfillAllowed,
		Reason: "photos recovered from device",
	})
}

func seedPhoto(repo *stubBackfillRepo, loc *models.SpliceLocation, key slots.SlotKey) {
	byKey := repo.photos[loc.ID]
	if byKey == nil {
		byKey = map[string]*models.SlotPhoto{}
		repo.photos[loc.ID] = byKey
	}
	byKey[string(key)] = &models.SlotPhoto{
		ID:               uuid.New(),
		SpliceLocationID: loc.ID,
		SlotKey:          string(key),
		StoragePath:      "proof/" + string(key) + ".jpg",
	}
}

func uploadInput(loc *models.SpliceLocation) AssignUploadInput {
	return AssignUploadInput{
		LocationID:  loc.ID,
		Body:        strings.NewReader("jpeg-bytes"),
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleOwner,
	}
}

func TestAssignUploadPicksFirstMissingRequiredPort(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := seedLocation(repo, 4)
	allowBackfill(repo, loc.NodeID)
	for n := 1; n <= 3; n++ {
		seedPhoto(repo, loc, slots.PortKey(n))
	}

	photo, err := svc.AssignUpload(context.Background(), uploadInput(loc))
	if err != nil {
		t.Fatalf("AssignUpload: %v", err)
	}
	if photo.SlotKey != "port_4" {
		t.Fatalf("expected port_4, got %s", photo.SlotKey)
	}
	if !photo.Backfilled {
		t.Fatalf("expected backfilled photo")
	}
	if photo.Source != enums.PhotoSourceUpload {
		t.Fatalf("expected upload source, got %s", photo.Source)
	}
}

func TestAssignUploadCompletionTagged(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := seedLocation(repo, 2)
	allowBackfill(repo, loc.NodeID)

	input := uploadInput(loc)
	input.CompletionPhoto = true
	photo, err := svc.AssignUpload(context.Background(), input)
	if err != nil {
		t.Fatalf("AssignUpload: %v", err)
	}
	if photo.SlotKey != string(slots.CompletionKey) {
		t.Fatalf("expected splice_completion, got %s", photo.SlotKey)
	}
}

func TestAssignUploadSpillsBeyondRequiredPorts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := seedLocation(repo, 2)
	allowBackfill(repo, loc.NodeID)
	seedPhoto(repo, loc, slots.PortKey(1))
	seedPhoto(repo, loc, slots.PortKey(2))

	photo, err := svc.AssignUpload(context.Background(), uploadInput(loc))
	if err != nil {
		t.Fatalf("AssignUpload: %v", err)
	}
	if photo.SlotKey != "port_3" {
		t.Fatalf("expected spill to port_3, got %s", photo.SlotKey)
	}
}

func TestAssignUploadFailsWhenSlotsFull(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := seedLocation(repo, 2)
	allowBackfill(repo, loc.NodeID)
	for n := 1; n <= slots.MaxPorts; n++ {
		seedPhoto(repo, loc, slots.PortKey(n))
	}

	_, err := svc.AssignUpload(context.Background(), uploadInput(loc))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if appErr.Message() != "slots full" {
		t.Fatalf("expected slots full, got %q", appErr.Message())
	}
}

func TestAssignUploadRequiresOwner(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := seedLocation(repo, 2)
	allowBackfill(repo, loc.NodeID)

	input := uploadInput(loc)
	input.ActorRole = enums.ActorRolePrime
	_, err := svc.AssignUpload(context.Background(), input)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestAssignUploadRequiresOverride(t *testing.T) {
	svc, repo, store := newTestService(t)
	loc := seedLocation(repo, 2)

	_, err := svc.AssignUpload(context.Background(), uploadInput(loc))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("no object should be written, got %d", len(store.uploads))
	}
}

func TestAssignUploadPrefersEmbeddedTimestamp(t *testing.T) {
	svc, repo, _ := newTestService(t)
	loc := seedLocation(repo, 2)
	allowBackfill(repo, loc.NodeID)

	taken := time.Date(2026, time.January, 4, 9, 30, 0, 0, time.UTC)
	input := uploadInput(loc)
	input.EmbeddedCapturedAt = &taken

	photo, err := svc.AssignUpload(context.Background(), input)
	if err != nil {
		t.Fatalf("AssignUpload: %v", err)
	}
	if photo.CapturedAt == nil || !photo.CapturedAt.Equal(taken) {
		t.Fatalf("expected embedded timestamp, got %v", photo.CapturedAt)
	}
}

func TestAssignUploadRollsBackObjectOnStoreFailure(t *testing.T) {
	svc, repo, store := newTestService(t)
	loc := seedLocation(repo, 2)
	allowBackfill(repo, loc.NodeID)
	repo.upsertErr = fmt.Errorf("connection reset")

	_, err := svc.AssignUpload(context.Background(), uploadInput(loc))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY, got %v", err)
	}
	if len(store.uploads) != 1 || len(store.deletes) != 1 {
		t.Fatalf("expected upload then rollback delete, got %d/%d", len(store.uploads), len(store.deletes))
	}
	if store.uploads[0] != store.deletes[0] {
		t.Fatalf("rollback deleted the wrong object")
	}
}
