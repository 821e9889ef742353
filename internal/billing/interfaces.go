package billing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// Repository covers the persistence the billing service needs: invoices
// and their line items, pricing configuration, the node state consulted
// by the billing gate, and the owner-override ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindNode(ctx context.Context, nodeID uuid.UUID) (*models.Node, error)
	FindLocation(ctx context.Context, locationID uuid.UUID) (*models.SpliceLocation, error)
	FindLocationsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.SpliceLocation, error)
	FindSlotPhotosByNode(ctx context.Context, nodeID uuid.UUID) (map[uuid.UUID][]models.SlotPhoto, error)
	FindInventoryByNode(ctx context.Context, nodeID uuid.UUID) ([]models.InventoryCheckItem, error)
	FindUsageEventsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.UsageEvent, error)

	FindInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error)
	FindInvoiceForLocation(ctx context.Context, projectID, locationID uuid.UUID) (*models.Invoice, error)
	MaxInvoiceSequence(ctx context.Context, year int) (int, error)
	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, updates map[string]any) error

	FindInvoiceItem(ctx context.Context, itemID uuid.UUID) (*models.InvoiceItem, error)
	FindInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceItem, error)
	CreateInvoiceItem(ctx context.Context, item *models.InvoiceItem) (*models.InvoiceItem, error)
	UpdateInvoiceItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteInvoiceItem(ctx context.Context, itemID uuid.UUID) error

	FindWorkCode(ctx context.Context, workCodeID uuid.UUID) (*models.WorkCode, error)
	FindWorkCodesByUnit(ctx context.Context, unit string) ([]models.WorkCode, error)
	FindActiveRateCard(ctx context.Context, projectID uuid.UUID) (*models.RateCard, error)
	FindRateCardItem(ctx context.Context, rateCardID, workCodeID uuid.UUID) (*models.RateCardItem, error)

	FindOpenOverride(ctx context.Context, nodeID uuid.UUID, overrideType enums.OverrideType) (*models.OwnerOverride, error)
	ListOverridesByNode(ctx context.Context, nodeID uuid.UUID) ([]models.OwnerOverride, error)
	CreateOverride(ctx context.Context, override *models.OwnerOverride) (*models.OwnerOverride, error)
}
