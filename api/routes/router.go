package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/speccom/fieldproof-backend/api/controllers"
	"github.com/speccom/fieldproof-backend/api/middleware"
	"github.com/speccom/fieldproof-backend/internal/backfill"
	"github.com/speccom/fieldproof-backend/internal/billing"
	"github.com/speccom/fieldproof-backend/internal/nodes"
	"github.com/speccom/fieldproof-backend/internal/usage"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/db"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	"github.com/speccom/fieldproof-backend/pkg/logger"
	"github.com/speccom/fieldproof-backend/pkg/pubsub"
	"github.com/speccom/fieldproof-backend/pkg/redis"
	"github.com/speccom/fieldproof-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gcsP gcs.Pinger,
	pubsubClient *pubsub.Client,
	nodesService nodes.Service,
	usageService usage.Service,
	billingService billing.Service,
	backfillService backfill.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP, gcsP, pubsubClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/nodes/{nodeID}", func(r chi.Router) {
			r.Get("/", controllers.GetNode(nodesService, logg))
			r.Post("/start", controllers.StartNode(nodesService, logg))
			r.Post("/complete", controllers.CompleteNode(nodesService, logg))
			r.With(middleware.RequireBillingManager(logg)).
				Patch("/ready", controllers.MarkNodeReady(nodesService, logg))
			r.Post("/locations", controllers.CreateLocation(nodesService, logg))

			r.Route("/usage", func(r chi.Router) {
				r.Post("/", controllers.SubmitUsage(usageService, cfg.Proof, logg))
				r.Get("/remaining", controllers.RemainingUsage(usageService, logg))
				r.Get("/alerts", controllers.UsageAlerts(usageService, logg))
			})

			r.Get("/billing", controllers.BillingStatus(billingService, logg))
			r.Route("/overrides", func(r chi.Router) {
				r.Get("/", controllers.ListOverrides(billingService, logg))
				r.With(middleware.RequireRoles(logg, enums.ActorRoleOwner)).
					Post("/", controllers.CreateOverride(billingService, logg))
			})
		})

		r.Route("/locations/{locationID}", func(r chi.Router) {
			r.Patch("/", controllers.UpdateLocation(nodesService, logg))
			r.Patch("/completed", controllers.SetLocationCompleted(nodesService, logg))
			r.With(middleware.RequireRoles(logg, enums.ActorRoleOwner)).
				Delete("/", controllers.DeleteLocation(nodesService, logg))
			r.Post("/photos", controllers.AttachSlotPhoto(nodesService, cfg.Proof, logg))
			r.Get("/photos/{slotKey}/url", controllers.SlotPhotoURL(nodesService, logg))
			r.With(middleware.RequireRoles(logg, enums.ActorRoleOwner)).
				Post("/backfill", controllers.BackfillUpload(backfillService, cfg.Proof, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", controllers.EnsureInvoice(billingService, logg))
			r.Route("/{invoiceID}", func(r chi.Router) {
				r.Get("/", controllers.GetInvoice(billingService, logg))
				r.Get("/export", controllers.ExportInvoiceCSV(billingService, logg))
				r.Patch("/notes", controllers.UpdateInvoiceNotes(billingService, logg))
				r.Post("/items", controllers.AddInvoiceItem(billingService, logg))
				r.With(middleware.RequireBillingManager(logg)).Group(func(r chi.Router) {
					r.Post("/ready", controllers.MarkInvoiceReady(billingService, logg))
					r.Patch("/status", controllers.UpdateInvoiceStatus(billingService, logg))
				})
				r.With(middleware.RequireRoles(logg, enums.ActorRoleOwner, enums.ActorRolePrime)).
					Post("/import-usage", controllers.ImportApprovedUsage(billingService, logg))
			})
		})

		r.Route("/invoice-items/{itemID}", func(r chi.Router) {
			r.Patch("/", controllers.UpdateInvoiceItem(billingService, logg))
			r.Delete("/", controllers.DeleteInvoiceItem(billingService, logg))
		})
	})

	return r
}
