package nodes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// Repository defines persistence operations for node, location and
// slot-photo tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindNode(ctx context.Context, nodeID uuid.UUID) (*models.Node, error)
	FindActiveNodeInProject(ctx context.Context, projectID, excludeNodeID uuid.UUID) (*models.Node, error)
	UpdateNode(ctx context.Context, nodeID uuid.UUID, updates map[string]any) error
	FindLocation(ctx context.Context, locationID uuid.UUID) (*models.SpliceLocation, error)
	FindLocationsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.SpliceLocation, error)
	CountLocationsByNode(ctx context.Context, nodeID uuid.UUID) (int64, error)
	CreateLocation(ctx context.Context, location *models.SpliceLocation) (*models.SpliceLocation, error)
	UpdateLocation(ctx context.Context, locationID uuid.UUID, updates map[string]any) error
	DeleteLocation(ctx context.Context, locationID uuid.UUID) error
	FindSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) ([]models.SlotPhoto, error)
	FindSlotPhotosByNode(ctx context.Context, nodeID uuid.UUID) (map[uuid.UUID][]models.SlotPhoto, error)
	UpsertSlotPhoto(ctx context.Context, photo *models.SlotPhoto) (*models.SlotPhoto, error)
	DeleteSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) error
	FindInventoryByNode(ctx context.Context, nodeID uuid.UUID) ([]models.InventoryCheckItem, error)
	FindUsageEventsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.UsageEvent, error)
	FindInvoiceByLocation(ctx context.Context, locationID uuid.UUID) (*models.Invoice, error)
	FindOpenOverride(ctx context.Context, nodeID uuid.UUID, overrideType enums.OverrideType) (*models.OwnerOverride, error)
}
