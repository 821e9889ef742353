package backfill

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a backfill repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindLocation(ctx context.Context, locationID uuid.UUID) (*models.SpliceLocation, error) {
	var location models.SpliceLocation
	err := r.db.WithContext(ctx).
		Where("id = ?", locationID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) FindOpenOverride(ctx context.Context, nodeID uuid.UUID, overrideType enums.OverrideType) (*models.OwnerOverride, error) {
	var override models.OwnerOverride
	err := r.db.WithContext(ctx).
		Where("node_id = ? AND type = ?", nodeID, overrideType).
		Order("created_at DESC").
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *repository) FindSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) ([]models.SlotPhoto, error) {
	var photos []models.SlotPhoto
	err := r.db.WithContext(ctx).
		Where("splice_location_id = ?", locationID).
		Order("slot_key ASC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *repository) UpsertSlotPhoto(ctx context.Context, photo *models.SlotPhoto) (*models.SlotPhoto, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "splice_location_id"}, {Name: "slot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"storage_path", "captured_at", "gps", "gps_accuracy_m",
				"backfilled", "source", "uploaded_by", "updated_at",
			}),
		}).
		Create(photo).Error
	if err != nil {
		return nil, err
	}
	return photo, nil
}
