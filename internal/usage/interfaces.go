package usage

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
)

// Repository defines persistence operations for usage events, allowed
// quantities and alerts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindNode(ctx context.Context, nodeID uuid.UUID) (*models.Node, error)
	FindProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	FindInventoryItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryCheckItem, error)
	SumApprovedUsageForItem(ctx context.Context, nodeID, itemID uuid.UUID) (decimal.Decimal, error)
	SumApprovedUsageForUnitType(ctx context.Context, nodeID uuid.UUID, unitType string) (decimal.Decimal, error)
	CreateUsageEvent(ctx context.Context, event *models.UsageEvent) (*models.UsageEvent, error)
	FindUsageEvent(ctx context.Context, eventID uuid.UUID) (*models.UsageEvent, error)
	CreateProofUpload(ctx context.Context, upload *models.ProofUpload) (*models.ProofUpload, error)
	FindAllowedQuantity(ctx context.Context, nodeID uuid.UUID, unitType string) (*models.AllowedQuantity, error)
	FindOpenAlert(ctx context.Context, nodeID uuid.UUID, unitType string) (*models.Alert, error)
	CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	ListAlertsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.Alert, error)
}
