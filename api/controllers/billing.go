package controllers

import (
	"encoding/csv"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/speccom/fieldproof-backend/api/middleware"
	"github.com/speccom/fieldproof-backend/api/responses"
	"github.com/speccom/fieldproof-backend/api/validators"
	"github.com/speccom/fieldproof-backend/internal/billing"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/logger"
)

type ensureInvoiceRequest struct {
	LocationID string `json:"location_id" validate:"required,uuid4"`
}

// EnsureInvoice creates the invoice for a splice location, or returns
// the one that already exists.
func EnsureInvoice(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ensureInvoiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationID, err := parseUUIDField("location_id", req.LocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inv, err := svc.EnsureInvoice(r.Context(), billing.EnsureInvoiceInput{
			LocationID:  locationID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inv)
	}
}

func GetInvoice(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := uuidParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.InvoiceView(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func MarkInvoiceReady(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := uuidParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MarkInvoiceReady(r.Context(), billing.MarkInvoiceReadyInput{
			InvoiceID:   invoiceID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.InvoiceStatusReady)})
	}
}

type invoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func UpdateInvoiceStatus(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := uuidParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req invoiceStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateInvoiceStatus(r.Context(), billing.UpdateInvoiceStatusInput{
			InvoiceID:   invoiceID,
			Next:        enums.InvoiceStatus(req.Status),
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": req.Status})
	}
}

type invoiceNotesRequest struct {
	Notes *string `json:"notes"`
}

func UpdateInvoiceNotes(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := uuidParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req invoiceNotesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateInvoiceNotes(r.Context(), billing.UpdateInvoiceNotesInput{
			InvoiceID:   invoiceID,
			Notes:       req.Notes,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type lineItemRequest struct {
	WorkCodeID  *string `json:"work_code_id"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    string  `json:"quantity" validate:"required"`
	Rate        *string `json:"rate"`
}

func AddInvoiceItem(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := uuidParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req lineItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := billing.AddLineItemInput{
			InvoiceID:   invoiceID,
			Description: req.Description,
			Unit:        req.Unit,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}
		if req.WorkCodeID != nil {
			id, err := parseUUIDField("work_code_id", *req.WorkCodeID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.WorkCodeID = &id
		}
		qty, err := parseDecimalField("quantity", req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Quantity = qty
		if req.Rate != nil {
			rate, err := parseDecimalField("rate", *req.Rate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Rate = &rate
		}
		item, err := svc.AddLineItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

type updateLineItemRequest struct {
	Description *string `json:"description"`
	Quantity    *string `json:"quantity"`
	Rate        *string `json:"rate"`
}

func UpdateInvoiceItem(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateLineItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := billing.UpdateLineItemInput{
			ItemID:      itemID,
			Description: req.Description,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}
		if req.Quantity != nil {
			qty, err := parseDecimalField("quantity", *req.Quantity)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Quantity = &qty
		}
		if req.Rate != nil {
			rate, err := parseDecimalField("rate", *req.Rate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Rate = &rate
		}
		if err := svc.UpdateLineItem(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func DeleteInvoiceItem(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuidParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteLineItem(r.Context(), billing.DeleteLineItemInput{
			ItemID:      itemID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ImportApprovedUsage copies approved usage events onto the invoice as
// grouped line items.
func ImportApprovedUsage(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := uuidParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ImportApprovedUsage(r.Context(), billing.ImportApprovedUsageInput{
			InvoiceID:   invoiceID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, items)
	}
}

// ExportInvoiceCSV streams the invoice as a CSV attachment rather than
// the usual JSON envelope.
func ExportInvoiceCSV(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := uuidParam(r, "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		export, err := svc.ExportCSV(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		writer := csv.NewWriter(w)
		if err := writer.WriteAll(export.Rows); err != nil {
			logg.Error(r.Context(), "csv export write failed", err)
		}
	}
}

type createOverrideRequest struct {
	Type   string `json:"type" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

func CreateOverride(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createOverrideRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		override, err := svc.CreateOverride(r.Context(), billing.CreateOverrideInput{
			NodeID:      nodeID,
			Type:        enums.OverrideType(req.Type),
			Reason:      req.Reason,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, override)
	}
}

func ListOverrides(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		overrides, err := svc.ListOverrides(r.Context(), nodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overrides)
	}
}

// BillingStatus reports whether a node's billing gate is open, either
// from complete proof photos or an owner override.
func BillingStatus(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unlocked, err := svc.BillingUnlocked(r.Context(), nodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"billing_unlocked": unlocked})
	}
}

func parseDecimalField(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a decimal number").
			WithDetails(map[string]any{"field": field, "value": raw})
	}
	return v, nil
}
