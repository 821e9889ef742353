package usage

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a usage repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindNode(ctx context.Context, nodeID uuid.UUID) (*models.Node, error) {
	var node models.Node
	err := r.db.WithContext(ctx).
		Where("id = ?", nodeID).
		First(&node).Error
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *repository) FindProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("id = ?", projectID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindInventoryItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryCheckItem, error) {
	var item models.InventoryCheckItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindUsageEvent(ctx context.Context, eventID uuid.UUID) (*models.UsageEvent, error) {
	var event models.UsageEvent
	err := r.db.WithContext(ctx).
		Where("id = ?", eventID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) SumApprovedUsageForItem(ctx context.Context, nodeID, itemID uuid.UUID) (decimal.Decimal, error) {
	return r.sumApproved(ctx, "node_id = ? AND inventory_item_id = ?", nodeID, itemID)
}

func (r *repository) SumApprovedUsageForUnitType(ctx context.Context, nodeID uuid.UUID, unitType string) (decimal.Decimal, error) {
	return r.sumApproved(ctx, "node_id = ? AND unit_type = ?", nodeID, unitType)
}

func (r *repository) sumApproved(ctx context.Context, where string, args ...any) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Select("SUM(quantity)").
		Where(where, args...).
		Where("status = ?", enums.UsageStatusApproved).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *repository) CreateUsageEvent(ctx context.Context, event *models.UsageEvent) (*models.UsageEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) CreateProofUpload(ctx context.Context, upload *models.ProofUpload) (*models.ProofUpload, error) {
	if err := r.db.WithContext(ctx).Create(upload).Error; err != nil {
		return nil, err
	}
	return upload, nil
}

func (r *repository) FindAllowedQuantity(ctx context.Context, nodeID uuid.UUID, unitType string) (*models.AllowedQuantity, error) {
	var allowed models.AllowedQuantity
	err := r.db.WithContext(ctx).
		Where("node_id = ? AND unit_type = ?", nodeID, unitType).
		First(&allowed).Error
	if err != nil {
		return nil, err
	}
	return &allowed, nil
}

func (r *repository) FindOpenAlert(ctx context.Context, nodeID uuid.UUID, unitType string) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.WithContext(ctx).
		Where("node_id = ? AND unit_type = ? AND status = ?", nodeID, unitType, enums.AlertStatusOpen).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

func (r *repository) ListAlertsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.WithContext(ctx).
		Where("node_id = ?", nodeID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
