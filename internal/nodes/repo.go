package nodes

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

// NewRepository builds a nodes repository bound to the provided DB.
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

func (r *repository) FindActiveNodeInProject(ctx context.Context, projectID, excludeNodeID uuid.UUID) (*models.Node, error) {
	var node models.Node
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ? AND id <> ?", projectID, enums.NodeStatusActive, excludeNodeID).
		Order("started_at ASC").
		First(&node).Error
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *repository) UpdateNode(ctx context.Context, nodeID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Node{}).
		Where("id = ?", nodeID).
		Updates(updates).Error
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

func (r *repository) FindLocationsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.SpliceLocation, error) {
	var locations []models.SpliceLocation
	err := r.db.WithContext(ctx).
		Where("node_id = ?", nodeID).
		Order("sort_order ASC, created_at ASC, id ASC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *repository) CountLocationsByNode(ctx context.Context, nodeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SpliceLocation{}).
		Where("node_id = ?", nodeID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CreateLocation(ctx context.Context, location *models.SpliceLocation) (*models.SpliceLocation, error) {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func (r *repository) UpdateLocation(ctx context.Context, locationID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SpliceLocation{}).
		Where("id = ?", locationID).
		Updates(updates).Error
}

func (r *repository) DeleteLocation(ctx context.Context, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", locationID).
		Delete(&models.SpliceLocation{}).Error
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

func (r *repository) FindSlotPhotosByNode(ctx context.Context, nodeID uuid.UUID) (map[uuid.UUID][]models.SlotPhoto, error) {
	var photos []models.SlotPhoto
	err := r.db.WithContext(ctx).
		Joins("JOIN splice_locations ON splice_locations.id = slot_photos.splice_location_id").
		Where("splice_locations.node_id = ?", nodeID).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	byLocation := make(map[uuid.UUID][]models.SlotPhoto, len(photos))
	for _, photo := range photos {
		byLocation[photo.SpliceLocationID] = append(byLocation[photo.SpliceLocationID], photo)
	}
	return byLocation, nil
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

func (r *repository) DeleteSlotPhotosByLocation(ctx context.Context, locationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("splice_location_id = ?", locationID).
		Delete(&models.SlotPhoto{}).Error
}

func (r *repository) FindInventoryByNode(ctx context.Context, nodeID uuid.UUID) ([]models.InventoryCheckItem, error) {
	var items []models.InventoryCheckItem
	err := r.db.WithContext(ctx).
		Where("node_id = ?", nodeID).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindUsageEventsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.UsageEvent, error) {
	var events []models.UsageEvent
	err := r.db.WithContext(ctx).
		Where("node_id = ?", nodeID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) FindInvoiceByLocation(ctx context.Context, locationID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("splice_location_id = ?", locationID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
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
