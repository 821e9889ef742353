package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/api/middleware"
	"github.com/speccom/fieldproof-backend/api/responses"
	"github.com/speccom/fieldproof-backend/api/validators"
	"github.com/speccom/fieldproof-backend/internal/usage"
	"github.com/speccom/fieldproof-backend/pkg/config"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/logger"
)

// SubmitUsage records a usage event against a node. The request is
// multipart so the proof photo rides along with the quantity fields:
// inventory_item_id, quantity, proof_required, camera, invalidated,
// captured_at, gps_lat, gps_lng.
func SubmitUsage(svc usage.Service, cfg config.ProofConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := usage.SubmitInput{
			NodeID:      nodeID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}

		proofRequired := false
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			file, header, perr := proofPhotoFile(r, cfg.MaxUploadMB)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, perr)
				return
			}
			defer file.Close()
			proofRequired = formBool(r, "proof_required")

			capturedAt, terr := formTime(r, "captured_at")
			if terr != nil {
				responses.WriteError(r.Context(), logg, w, terr)
				return
			}
			gps, gerr := formGeoPoint(r)
			if gerr != nil {
				responses.WriteError(r.Context(), logg, w, gerr)
				return
			}
			input.Proof = usage.ProofInput{
				Camera:      formBool(r, "camera"),
				Invalidated: formBool(r, "invalidated"),
				Body:        file,
				ContentType: header.Header.Get("Content-Type"),
				GPS:         gps,
				CapturedAt:  capturedAt,
			}
		} else if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body"))
			return
		} else {
			proofRequired = formBool(r, "proof_required")
		}
		input.ProofRequired = proofRequired

		itemID, err := uuid.Parse(strings.TrimSpace(r.FormValue("inventory_item_id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "inventory_item_id must be a valid uuid"))
			return
		}
		input.InventoryItemID = itemID

		qty, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("quantity")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a decimal number"))
			return
		}
		input.Quantity = qty

		result, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RemainingUsage reports how much of an inventory item is left on a
// node after approved draw-downs. The item comes from ?item=<uuid>.
func RemainingUsage(svc usage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("item")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "item query parameter must be a valid uuid"))
			return
		}
		remaining, err := svc.Remaining(r.Context(), nodeID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"remaining": remaining.String()})
	}
}

// UsageAlerts lists a node's open threshold alerts, newest first, with
// an optional ?limit= cap.
func UsageAlerts(svc usage.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		alerts, err := svc.Alerts(r.Context(), nodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(alerts) > limit {
			alerts = alerts[:limit]
		}
		responses.WriteSuccess(w, alerts)
	}
}
