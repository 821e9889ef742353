package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlotPhotoMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_projects_nodes_locations.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS slot_photos",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_photos_location_slot ON slot_photos (splice_location_id, slot_key)",
		"CHECK (terminal_ports >= 1 AND terminal_ports <= 8)",
		"DROP TABLE IF EXISTS slot_photos",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsageMigrationContainsAlertDedup(t *testing.T) {
	content := readMigration(t, "*_create_usage_tracking.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS usage_events",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_open_node_unit ON alerts (node_id, unit_type) WHERE status = 'open'",
		"CHECK (quantity > 0)",
		"FOREIGN KEY (inventory_item_id) REFERENCES inventory_check_items(id) ON DELETE CASCADE",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBillingMigrationContainsInvoiceConstraints(t *testing.T) {
	content := readMigration(t, "*_create_billing.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_project_location ON invoices (project_id, splice_location_id)",
		"CHECK (length(trim(reason)) > 0)",
		"DROP TYPE IF EXISTS invoice_status",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
