package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/internal/backfill"
	"github.com/speccom/fieldproof-backend/internal/billing"
	"github.com/speccom/fieldproof-backend/internal/nodes"
	"github.com/speccom/fieldproof-backend/internal/usage"
	pkgAuth "github.com/speccom/fieldproof-backend/pkg/auth"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	"github.com/speccom/fieldproof-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubNodesService struct{}

func (stubNodesService) StartNode(context.Context, nodes.StartNodeInput) error    { return nil }
func (stubNodesService) CompleteNode(context.Context, nodes.CompleteNodeInput) error {
	return nil
}
func (stubNodesService) MarkReady(context.Context, nodes.MarkReadyInput) error { return nil }
func (stubNodesService) NodeView(context.Context, uuid.UUID) (*nodes.NodeView, error) {
	return &nodes.NodeView{}, nil
}
func (stubNodesService) CreateLocation(context.Context, nodes.CreateLocationInput) (*models.SpliceLocation, error) {
	return &models.SpliceLocation{}, nil
}
func (stubNodesService) UpdateLocation(context.Context, nodes.UpdateLocationInput) error {
	return nil
}
func (stubNodesService) SetLocationCompleted(context.Context, nodes.SetLocationCompletedInput) error {
	return nil
}
func (stubNodesService) DeleteLocation(context.Context, nodes.DeleteLocationInput) error {
	return nil
}
func (stubNodesService) AttachSlotPhoto(context.Context, nodes.AttachSlotPhotoInput) (*models.SlotPhoto, error) {
	return &models.SlotPhoto{}, nil
}
func (stubNodesService) SlotPhotoURL(context.Context, uuid.UUID, string) (string, error) {
	return "https://example.invalid/photo", nil
}

type stubUsageService struct{}

func (stubUsageService) Submit(context.Context, usage.SubmitInput) (*usage.SubmitResult, error) {
	return &usage.SubmitResult{}, nil
}
func (stubUsageService) Remaining(context.Context, uuid.UUID, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (stubUsageService) Alerts(context.Context, uuid.UUID) ([]models.Alert, error) {
	return nil, nil
}

type stubBillingService struct{}

func (stubBillingService) EnsureInvoice(context.Context, billing.EnsureInvoiceInput) (*models.Invoice, error) {
	return &models.Invoice{}, nil
}
func (stubBillingService) InvoiceView(context.Context, uuid.UUID) (*billing.InvoiceView, error) {
	return &billing.InvoiceView{}, nil
}
func (stubBillingService) MarkInvoiceReady(context.Context, billing.MarkInvoiceReadyInput) error {
	return nil
}
func (stubBillingService) UpdateInvoiceStatus(context.Context, billing.UpdateInvoiceStatusInput) error {
	return nil
}
func (stubBillingService) UpdateInvoiceNotes(context.Context, billing.UpdateInvoiceNotesInput) error {
	return nil
}
func (stubBillingService) AddLineItem(context.Context, billing.AddLineItemInput) (*models.InvoiceItem, error) {
	return &models.InvoiceItem{}, nil
}
func (stubBillingService) UpdateLineItem(context.Context, billing.UpdateLineItemInput) error {
	return nil
}
func (stubBillingService) DeleteLineItem(context.Context, billing.DeleteLineItemInput) error {
	return nil
}
func (stubBillingService) ImportApprovedUsage(context.Context, billing.ImportApprovedUsageInput) ([]models.InvoiceItem, error) {
	return nil, nil
}
func (stubBillingService) ExportCSV(context.Context, uuid.UUID) (*billing.InvoiceCSV, error) {
	return &billing.InvoiceCSV{Filename: "invoice-test.csv"}, nil
}
func (stubBillingService) CreateOverride(context.Context, billing.CreateOverrideInput) (*models.OwnerOverride, error) {
	return &models.OwnerOverride{}, nil
}
func (stubBillingService) ListOverrides(context.Context, uuid.UUID) ([]models.OwnerOverride, error) {
	return nil, nil
}
func (stubBillingService) BillingUnlocked(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

type stubBackfillService struct{}

func (stubBackfillService) AssignUpload(context.Context, backfill.AssignUploadInput) (*models.SlotPhoto, error) {
	return &models.SlotPhoto{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubPinger{},
		nil,
		stubNodesService{},
		stubUsageService{},
		stubBillingService{},
		stubBackfillService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes/"+uuid.NewString()+"/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAPIGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes/"+uuid.NewString()+"/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleSplicer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for node view got %d", resp.Code)
	}
}

func TestOverrideCreationRequiresOwner(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	nodeID := uuid.NewString()
	body := `{"type":"BILLING_UNLOCKED","reason":"customer walkthrough"}`

	prime := httptest.NewRequest(http.MethodPost, "/api/v1/nodes/"+nodeID+"/overrides/", strings.NewReader(body))
	prime.Header.Set("Content-Type", "application/json")
	prime.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRolePrime))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, prime)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner override got %d", resp.Code)
	}

	owner := httptest.NewRequest(http.MethodPost, "/api/v1/nodes/"+nodeID+"/overrides/", strings.NewReader(body))
	owner.Header.Set("Content-Type", "application/json")
	owner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleOwner))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, owner)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for owner override got %d", resp.Code)
	}
}

func TestInvoiceStatusRequiresBillingManager(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	invoiceID := uuid.NewString()
	body := `{"status":"submitted"}`

	splicer := httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/"+invoiceID+"/status", strings.NewReader(body))
	splicer.Header.Set("Content-Type", "application/json")
	splicer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleSplicer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, splicer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for splicer status change got %d", resp.Code)
	}

	tds := httptest.NewRequest(http.MethodPatch, "/api/v1/invoices/"+invoiceID+"/status", strings.NewReader(body))
	tds.Header.Set("Content-Type", "application/json")
	tds.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleTDS))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, tds)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for tds status change got %d", resp.Code)
	}
}

func TestDeleteLocationRequiresOwner(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	locationID := uuid.NewString()

	sub := httptest.NewRequest(http.MethodDelete, "/api/v1/locations/"+locationID+"/", nil)
	sub.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleSub))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, sub)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for sub delete got %d", resp.Code)
	}

	owner := httptest.NewRequest(http.MethodDelete, "/api/v1/locations/"+locationID+"/", nil)
	owner.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleOwner))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, owner)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner delete got %d", resp.Code)
	}
}

func TestInvoiceExportStreamsCSV(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+uuid.NewString()+"/export", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleOwner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for export got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv got %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice-test.csv") {
		t.Fatalf("expected attachment filename in %q", cd)
	}
}
