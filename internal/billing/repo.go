package billing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a billing repository bound to the provided DB.
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

func (r *repository) FindInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("id = ?", invoiceID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindInvoiceForLocation(ctx context.Context, projectID, locationID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND splice_location_id = ?", projectID, locationID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) MaxInvoiceSequence(ctx context.Context, year int) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("issued_year = ?", year).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(updates).Error
}

func (r *repository) FindInvoiceItem(ctx context.Context, itemID uuid.UUID) (*models.InvoiceItem, error) {
	var item models.InvoiceItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceItem, error) {
	var items []models.InvoiceItem
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateInvoiceItem(ctx context.Context, item *models.InvoiceItem) (*models.InvoiceItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) UpdateInvoiceItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InvoiceItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repository) DeleteInvoiceItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.InvoiceItem{}).Error
}

func (r *repository) FindWorkCode(ctx context.Context, workCodeID uuid.UUID) (*models.WorkCode, error) {
	var code models.WorkCode
	err := r.db.WithContext(ctx).
		Where("id = ?", workCodeID).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindWorkCodesByUnit(ctx context.Context, unit string) ([]models.WorkCode, error) {
	var codes []models.WorkCode
	err := r.db.WithContext(ctx).
		Where("unit = ?", unit).
		Order("code ASC").
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *repository) FindActiveRateCard(ctx context.Context, projectID uuid.UUID) (*models.RateCard, error) {
	var card models.RateCard
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND active = ?", projectID, true).
		Order("updated_at DESC").
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *repository) FindRateCardItem(ctx context.Context, rateCardID, workCodeID uuid.UUID) (*models.RateCardItem, error) {
	var item models.RateCardItem
	err := r.db.WithContext(ctx).
		Where("rate_card_id = ? AND work_code_id = ?", rateCardID, workCodeID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
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

func (r *repository) ListOverridesByNode(ctx context.Context, nodeID uuid.UUID) ([]models.OwnerOverride, error) {
	var overrides []models.OwnerOverride
	err := r.db.WithContext(ctx).
		Where("node_id = ?", nodeID).
		Order("created_at DESC").
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *repository) CreateOverride(ctx context.Context, override *models.OwnerOverride) (*models.OwnerOverride, error) {
	if err := r.db.WithContext(ctx).Create(override).Error; err != nil {
		return nil, err
	}
	return override, nil
}
