package billing

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  splice_location_id TEXT NOT NULL,
  node_id TEXT NOT NULL,
  number TEXT NOT NULL,
  issued_year INTEGER NOT NULL,
  sequence INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  notes TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (project_id, splice_location_id)
);`, `
CREATE TABLE IF NOT EXISTS invoice_items (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  work_code_id TEXT,
  description TEXT NOT NULL,
  unit TEXT NOT NULL,
  quantity NUMERIC NOT NULL DEFAULT 0,
  rate NUMERIC NOT NULL DEFAULT 0,
  amount NUMERIC NOT NULL DEFAULT 0,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS work_codes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  unit TEXT NOT NULL,
  default_rate NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS rate_cards (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS rate_card_items (
  id TEXT PRIMARY KEY,
  rate_card_id TEXT NOT NULL,
  work_code_id TEXT NOT NULL,
  rate NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (rate_card_id, work_code_id)
);`, `
CREATE TABLE IF NOT EXISTS owner_overrides (
  id TEXT PRIMARY KEY,
  node_id TEXT NOT NULL,
  type TEXT NOT NULL,
  reason TEXT NOT NULL,
  created_by TEXT,
  created_at DATETIME
);`}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedTestInvoice(t *testing.T, db *gorm.DB, projectID, locationID uuid.UUID, year, sequence int) *models.Invoice {
	t.Helper()
	invoice := &models.Invoice{
		ID:               uuid.New(),
		ProjectID:        projectID,
		SpliceLocationID: locationID,
		NodeID:           uuid.New(),
		Number:           fmt.Sprintf("SC-%d-%04d", year, sequence),
		IssuedYear:       year,
		Sequence:         sequence,
		Status:           enums.InvoiceStatusDraft,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestMaxInvoiceSequence(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	max, err := repo.MaxInvoiceSequence(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	projectID := uuid.New()
	seedTestInvoice(t, db, projectID, uuid.New(), 2026, 1)
	seedTestInvoice(t, db, projectID, uuid.New(), 2026, 7)
	seedTestInvoice(t, db, projectID, uuid.New(), 2025, 42)

	max, err = repo.MaxInvoiceSequence(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 7, max)

	max, err = repo.MaxInvoiceSequence(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 42, max)
}

func TestFindInvoiceForLocation(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	locationID := uuid.New()
	seeded := seedTestInvoice(t, db, projectID, locationID, 2026, 1)
	seedTestInvoice(t, db, projectID, uuid.New(), 2026, 2)

	found, err := repo.FindInvoiceForLocation(ctx, projectID, locationID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, "SC-2026-0001", found.Number)

	_, err = repo.FindInvoiceForLocation(ctx, uuid.New(), locationID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindInvoiceItemsOrder(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	invoiceID := uuid.New()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, sortOrder := range []int{2, 0, 1} {
		item := &models.InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   invoiceID,
			Description: fmt.Sprintf("line %d", sortOrder),
			Unit:        "each",
			Quantity:    decimal.NewFromInt(1),
			SortOrder:   sortOrder,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(item).Error)
	}

	items, err := repo.FindInvoiceItems(ctx, invoiceID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "line 0", items[0].Description)
	assert.Equal(t, "line 1", items[1].Description)
	assert.Equal(t, "line 2", items[2].Description)
}

func TestDeleteInvoiceItem(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := &models.InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   uuid.New(),
		Description: "splice tray",
		Unit:        "each",
		Quantity:    decimal.NewFromInt(2),
	}
	require.NoError(t, db.Create(item).Error)

	require.NoError(t, repo.DeleteInvoiceItem(ctx, item.ID))

	_, err := repo.FindInvoiceItem(ctx, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindWorkCodesByUnit(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, wc := range []models.WorkCode{
		{ID: uuid.New(), Code: "FBR-Z", Description: "fiber", Unit: "meters", DefaultRate: decimal.NewFromFloat(1.10)},
		{ID: uuid.New(), Code: "FBR-A", Description: "fiber", Unit: "meters", DefaultRate: decimal.NewFromFloat(1.05)},
		{ID: uuid.New(), Code: "TRM", Description: "terminal", Unit: "each", DefaultRate: decimal.NewFromFloat(4.50)},
	} {
		require.NoError(t, db.Create(&wc).Error)
	}

	codes, err := repo.FindWorkCodesByUnit(ctx, "meters")
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "FBR-A", codes[0].Code)
	assert.Equal(t, "FBR-Z", codes[1].Code)
}

func TestFindActiveRateCard(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	inactive := &models.RateCard{ID: uuid.New(), ProjectID: projectID, Name: "old", Active: false, UpdatedAt: base.Add(2 * time.Hour)}
	stale := &models.RateCard{ID: uuid.New(), ProjectID: projectID, Name: "stale", Active: true, UpdatedAt: base}
	current := &models.RateCard{ID: uuid.New(), ProjectID: projectID, Name: "current", Active: true, UpdatedAt: base.Add(time.Hour)}
	for _, card := range []*models.RateCard{inactive, stale, current} {
		require.NoError(t, db.Create(card).Error)
	}

	card, err := repo.FindActiveRateCard(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, "current", card.Name)

	_, err = repo.FindActiveRateCard(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindOpenOverridePicksLatest(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	nodeID := uuid.New()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	first := &models.OwnerOverride{
		ID:        uuid.New(),
		NodeID:    nodeID,
		Type:      enums.OverrideTypeBillingUnlocked,
		Reason:    "customer walkthrough",
		CreatedAt: base,
	}
	second := &models.OwnerOverride{
		ID:        uuid.New(),
		NodeID:    nodeID,
		Type:      enums.OverrideTypeBillingUnlocked,
		Reason:    "re-approved after audit",
		CreatedAt: base.Add(time.Hour),
	}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	override, err := repo.FindOpenOverride(ctx, nodeID, enums.OverrideTypeBillingUnlocked)
	require.NoError(t, err)
	assert.Equal(t, second.ID, override.ID)

	_, err = repo.FindOpenOverride(ctx, nodeID, enums.OverrideTypeBackfillAllowed)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
