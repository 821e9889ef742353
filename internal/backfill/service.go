package backfill

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/internal/slots"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/storage/gcs"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AssignUploadInput carries one after-the-fact photo upload. When the
// file has an embedded capture timestamp it is preferred over the
// upload time.
type AssignUploadInput struct {
	LocationID         uuid.UUID
	CompletionPhoto    bool
	Body               io.Reader
	ContentType        string
	EmbeddedCapturedAt *time.Time
	ActorUserID        uuid.UUID
	ActorRole          enums.ActorRole
}

// Service assigns uploaded photos to missing slots. The path is active
// only for the owner and only on nodes with a BACKFILL_ALLOWED
// override.
type Service interface {
	AssignUpload(ctx context.Context, input AssignUploadInput) (*models.SlotPhoto, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	photos gcs.ObjectStore
	bucket string
	now    func() time.Time
}

// NewService builds a backfill service with the required dependencies.
func NewService(repo Repository, tx txRunner, photos gcs.ObjectStore, bucket string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("backfill repository required")
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
	return &service{
		repo:   repo,
		tx:     tx,
		photos: photos,
		bucket: bucket,
		now:    time.Now,
	}, nil
}

func (s *service) AssignUpload(ctx context.Context, input AssignUploadInput) (*models.SlotPhoto, error) {
	if input.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo body required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.ActorRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may backfill photos")
	}

	location, err := s.repo.FindLocation(ctx, input.LocationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
	}
	override, err := s.repo.FindOpenOverride(ctx, location.NodeID, enums.OverrideTypeBackfillAllowed)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load override")
	}
	if override == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "backfill is not enabled for this node")
	}

	photos, err := s.repo.FindSlotPhotosByLocation(ctx, location.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot photos")
	}
	populated := make(slots.Set, len(photos))
	for _, photo := range photos {
		if key, err := slots.ParseSlotKey(photo.SlotKey); err == nil {
			populated[key] = true
		}
	}

	key, ok := chooseSlot(populated, location.TerminalPorts, input.CompletionPhoto)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "slots full")
	}

	objectPath := fmt.Sprintf("proof/%s/%s/%s-%d.jpg", location.NodeID, location.ID, key, s.now().UTC().Unix())
	contentType := input.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := s.photos.UploadObject(ctx, s.bucket, objectPath, contentType, input.Body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload photo")
	}

	capturedAt := s.now().UTC()
	if input.EmbeddedCapturedAt != nil {
		capturedAt = input.EmbeddedCapturedAt.UTC()
	}
	photo := &models.SlotPhoto{
		SpliceLocationID: location.ID,
		SlotKey:          string(key),
		StoragePath:      objectPath,
		CapturedAt:       &capturedAt,
		Backfilled:       true,
		Source:           enums.PhotoSourceUpload,
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
		_ = s.photos.DeleteObject(ctx, s.bucket, objectPath)
		return nil, err
	}
	return photo, nil
}

// chooseSlot picks the target slot: the completion slot for
// completion-tagged uploads, otherwise the first missing required port,
// otherwise the first free port beyond the required set.
func chooseSlot(populated slots.Set, terminalPorts int, completionPhoto bool) (slots.SlotKey, bool) {
	if completionPhoto {
		return slots.CompletionKey, true
	}
	ports := slots.NormalizePorts(terminalPorts)
	for n := 1; n <= ports; n++ {
		if key := slots.PortKey(n); !populated[key] {
			return key, true
		}
	}
	for n := ports + 1; n <= slots.MaxPorts; n++ {
		if key := slots.PortKey(n); !populated[key] {
			return key, true
		}
	}
	return "", false
}
