package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/logger"
	"github.com/speccom/fieldproof-backend/pkg/storage/gcs"
)

const alertSeverityWarning = "warning"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type snapshotStore interface {
	Del(context.Context, ...string) error
	ProofSnapshotKey(nodeID string) string
}

type changePublisher interface {
	PublishChange(ctx context.Context, msg ChangeMessage) error
}

// Service validates and stores materials-usage submissions.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	Remaining(ctx context.Context, nodeID, itemID uuid.UUID) (decimal.Decimal, error)
	Alerts(ctx context.Context, nodeID uuid.UUID) ([]models.Alert, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	photos    gcs.ObjectStore
	bucket    string
	snapshots snapshotStore
	publisher changePublisher
	logg      *logger.Logger
	defaults  alertDefaults
	now       func() time.Time
}

// NewService builds a usage service with the required dependencies.
// The publisher and snapshot store are post-commit conveniences and may
// be nil in tooling contexts.
func NewService(
	repo Repository,
	tx txRunner,
	photos gcs.ObjectStore,
	bucket string,
	snapshots snapshotStore,
	publisher changePublisher,
	logg *logger.Logger,
	cfg config.UsageConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("usage repository required")
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
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	defaults, err := newAlertDefaults(cfg.AlertThresholdPct, cfg.AlertThresholdAbs)
	if err != nil {
		return nil, err
	}

	return &service{
		repo:      repo,
		tx:        tx,
		photos:    photos,
		bucket:    bucket,
		snapshots: snapshots,
		publisher: publisher,
		logg:      logg,
		defaults:  defaults,
		now:       time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.NodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	if input.InventoryItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory item id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if input.ProofRequired {
		if err := validateProof(input.Proof); err != nil {
			return nil, err
		}
	}

	node, err := s.repo.FindNode(ctx, input.NodeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
	}
	project, err := s.repo.FindProject(ctx, node.ProjectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	jobNumber := strings.TrimSpace(project.JobNumber)
	if jobNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no job number configured for project")
	}

	item, err := s.repo.FindInventoryItem(ctx, input.InventoryItemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	if item.NodeID != node.ID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory item does not belong to node")
	}

	var photoPath *string
	if input.ProofRequired {
		path := s.proofObjectPath(node.ID, item.ID)
		contentType := input.Proof.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		if err := s.photos.UploadObject(ctx, s.bucket, path, contentType, input.Proof.Body); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload proof photo")
		}
		photoPath = &path
	}

	result := &SubmitResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		approved, err := repo.SumApprovedUsageForItem(ctx, node.ID, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum approved usage")
		}
		remaining := item.PlannedQty.Sub(approved)

		status := enums.UsageStatusNeedsApproval
		if input.Quantity.LessThanOrEqual(remaining) {
			status = enums.UsageStatusApproved
		}

		confirmedAt := s.now().UTC()
		event := &models.UsageEvent{
			NodeID:            node.ID,
			InventoryItemID:   item.ID,
			UnitType:          item.UnitType,
			Quantity:          input.Quantity,
			Status:            status,
			ProofRequired:     input.ProofRequired,
			Camera:            input.Proof.Camera,
			PhotoPath:         photoPath,
			GPS:               input.Proof.GPS,
			ClientCapturedAt:  input.Proof.CapturedAt,
			ServerConfirmedAt: &confirmedAt,
			JobNumber:         &jobNumber,
			SubmittedBy:       &input.ActorUserID,
		}
		if event, err = repo.CreateUsageEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store usage event")
		}

		if photoPath != nil {
			upload := &models.ProofUpload{
				UsageEventID:     event.ID,
				PhotoPath:        *photoPath,
				GPS:              input.Proof.GPS,
				ClientCapturedAt: input.Proof.CapturedAt,
				JobNumber:        &jobNumber,
				UploadedBy:       &input.ActorUserID,
			}
			if _, err := repo.CreateProofUpload(ctx, upload); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store proof upload")
			}
		}

		opened, err := reevaluateAlert(ctx, repo, node.ID, item.UnitType, s.defaults)
		if err != nil {
			return err
		}

		result.Event = event
		result.Remaining = remaining.Sub(approvedDelta(event))
		result.AlertOpened = opened
		return nil
	})
	if err != nil {
		if photoPath != nil {
			// Roll back the optimistic object write before surfacing.
			_ = s.photos.DeleteObject(ctx, s.bucket, *photoPath)
		}
		return nil, err
	}

	s.afterCommit(ctx, result.Event)
	return result, nil
}

func (s *service) Remaining(ctx context.Context, nodeID, itemID uuid.UUID) (decimal.Decimal, error) {
	if nodeID == uuid.Nil || itemID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "node and item ids required")
	}
	item, err := s.repo.FindInventoryItem(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item no longer exists")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	approved, err := s.repo.SumApprovedUsageForItem(ctx, nodeID, itemID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum approved usage")
	}
	return item.PlannedQty.Sub(approved), nil
}

func (s *service) Alerts(ctx context.Context, nodeID uuid.UUID) ([]models.Alert, error) {
	if nodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	alerts, err := s.repo.ListAlertsByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	return alerts, nil
}

// alertDefaults carries service-wide thresholds applied when the
// allowed-quantity row does not override them.
type alertDefaults struct {
	pct decimal.Decimal
	abs *decimal.Decimal
}

func newAlertDefaults(pct float64, abs string) (alertDefaults, error) {
	defaults := alertDefaults{pct: decimal.NewFromFloat(pct)}
	if strings.TrimSpace(abs) != "" {
		parsed, err := decimal.NewFromString(abs)
		if err != nil {
			return alertDefaults{}, fmt.Errorf("parse absolute alert threshold: %w", err)
		}
		defaults.abs = &parsed
	}
	return defaults, nil
}

// reevaluateAlert opens an alert when remaining allowance for the unit
// type crosses its threshold and no open alert exists for the pair.
func reevaluateAlert(ctx context.Context, repo Repository, nodeID uuid.UUID, unitType string, defaults alertDefaults) (bool, error) {
	allowed, err := repo.FindAllowedQuantity(ctx, nodeID, unitType)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load allowed quantity")
	}

	used, err := repo.SumApprovedUsageForUnitType(ctx, nodeID, unitType)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum unit usage")
	}
	remaining := allowed.AllowedQty.Sub(used)

	if !thresholdHit(allowed, remaining, defaults) {
		return false, nil
	}

	if _, err := repo.FindOpenAlert(ctx, nodeID, unitType); err == nil {
		return false, nil
	} else if err != gorm.ErrRecordNotFound {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open alert")
	}

	alert := &models.Alert{
		NodeID:       nodeID,
		UnitType:     unitType,
		Status:       enums.AlertStatusOpen,
		AllowedQty:   allowed.AllowedQty,
		UsedQty:      used,
		RemainingQty: remaining,
		Severity:     alertSeverityWarning,
	}
	if _, err := repo.CreateAlert(ctx, alert); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open alert")
	}
	return true, nil
}

func thresholdHit(allowed *models.AllowedQuantity, remaining decimal.Decimal, defaults alertDefaults) bool {
	pct := defaults.pct
	if allowed.AlertThresholdPct != nil {
		pct = *allowed.AlertThresholdPct
	}
	abs := defaults.abs
	if allowed.AlertThresholdAbs != nil {
		abs = allowed.AlertThresholdAbs
	}

	if allowed.AllowedQty.IsPositive() && pct.IsPositive() {
		if remaining.Div(allowed.AllowedQty).LessThanOrEqual(pct) {
			return true
		}
	}
	if abs != nil && remaining.LessThanOrEqual(*abs) {
		return true
	}
	return false
}

// afterCommit fans the stored event out to concurrent viewers. Both
// effects are best-effort; the submission already committed.
func (s *service) afterCommit(ctx context.Context, event *models.UsageEvent) {
	if s.snapshots != nil {
		key := s.snapshots.ProofSnapshotKey(event.NodeID.String())
		if err := s.snapshots.Del(ctx, key); err != nil {
			s.logg.Warn(ctx, "failed to invalidate proof snapshot")
		}
	}
	if s.publisher != nil {
		msg := ChangeMessage{
			EventID:  event.ID,
			NodeID:   event.NodeID,
			UnitType: event.UnitType,
			Status:   event.Status,
			Quantity: event.Quantity,
		}
		if err := s.publisher.PublishChange(ctx, msg); err != nil {
			s.logg.Error(ctx, "failed to publish usage change", err)
		}
	}
}

func (s *service) proofObjectPath(nodeID, itemID uuid.UUID) string {
	return fmt.Sprintf("usage/%s/%s-%d.jpg", nodeID, itemID, s.now().UTC().UnixNano())
}

func validateProof(proof ProofInput) error {
	if !proof.Camera {
		return pkgerrors.New(pkgerrors.CodeValidation, "live camera capture required")
	}
	if proof.Invalidated {
		return pkgerrors.New(pkgerrors.CodeValidation, "capture was invalidated by backgrounding")
	}
	if proof.Body == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "proof photo required")
	}
	if proof.GPS == nil || proof.GPS.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "GPS required")
	}
	if proof.CapturedAt == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "capture timestamp required")
	}
	return nil
}

// approvedDelta is the quantity to subtract from pre-insert remaining
// so the result reflects this event when it was auto-approved.
func approvedDelta(event *models.UsageEvent) decimal.Decimal {
	if event.Status == enums.UsageStatusApproved {
		return event.Quantity
	}
	return decimal.Zero
}
