package backfill

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// Repository covers the rows backfill touches: the target location, its
// node's override ledger, and the location's photo slots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLocation(ctx context.Context, locationID uuid.UUID) (*models.SpliceLocation, error)
	FindOpenOverride(ctx context.Context, nodeID uuid.UUID, overrideType enums.OverrideType) (*models.OwnerOverride, error)
	FindSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) ([]models.SlotPhoto, error)
	UpsertSlotPhoto(ctx context.Context, photo *models.SlotPhoto) (*models.SlotPhoto, error)
}
