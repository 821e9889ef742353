package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/speccom/fieldproof-backend/api/middleware"
	"github.com/speccom/fieldproof-backend/api/responses"
	"github.com/speccom/fieldproof-backend/api/validators"
	"github.com/speccom/fieldproof-backend/internal/nodes"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/logger"
)

type createLocationRequest struct {
	Name            *string `json:"name"`
	TerminalPorts   int     `json:"terminal_ports" validate:"required"`
	WorkCodes       string  `json:"work_codes"`
	WorkDescription *string `json:"work_description"`
}

func CreateLocation(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createLocationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.CreateLocation(r.Context(), nodes.CreateLocationInput{
			NodeID:          nodeID,
			Name:            req.Name,
			TerminalPorts:   req.TerminalPorts,
			WorkCodes:       req.WorkCodes,
			WorkDescription: req.WorkDescription,
			ActorUserID:     middleware.UserIDFromContext(r.Context()),
			ActorRole:       middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type updateLocationRequest struct {
	Name            *string `json:"name"`
	TerminalPorts   *int    `json:"terminal_ports"`
	WorkCodes       *string `json:"work_codes"`
	WorkDescription *string `json:"work_description"`
}

func UpdateLocation(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := uuidParam(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateLocationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateLocation(r.Context(), nodes.UpdateLocationInput{
			LocationID:      locationID,
			Name:            req.Name,
			TerminalPorts:   req.TerminalPorts,
			WorkCodes:       req.WorkCodes,
			WorkDescription: req.WorkDescription,
			ActorUserID:     middleware.UserIDFromContext(r.Context()),
			ActorRole:       middleware.RoleFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

func SetLocationCompleted(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := uuidParam(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req setCompletedRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetLocationCompleted(r.Context(), nodes.SetLocationCompletedInput{
			LocationID:  locationID,
			Completed:   req.Completed,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"completed": req.Completed})
	}
}

func DeleteLocation(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := uuidParam(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteLocation(r.Context(), nodes.DeleteLocationInput{
			LocationID:  locationID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AttachSlotPhoto accepts a multipart proof photo for one slot. Form
// fields: photo (file), slot_key, camera, source, captured_at,
// gps_lat, gps_lng, gps_accuracy_m.
func AttachSlotPhoto(svc nodes.Service, cfg config.ProofConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := uuidParam(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, header, err := proofPhotoFile(r, cfg.MaxUploadMB)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		capturedAt, err := formTime(r, "captured_at")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		gps, err := formGeoPoint(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cfg.RequireGPS && gps == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "gps coordinates required for proof photos"))
			return
		}
		accuracy, err := formFloat(r, "gps_accuracy_m")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source := enums.PhotoSource(r.FormValue("source"))
		if source == "" {
			source = enums.PhotoSourceLive
		}

		view, err := svc.AttachSlotPhoto(r.Context(), nodes.AttachSlotPhotoInput{
			LocationID:   locationID,
			SlotKey:      r.FormValue("slot_key"),
			Body:         file,
			ContentType:  header.Header.Get("Content-Type"),
			Camera:       formBool(r, "camera"),
			Source:       source,
			CapturedAt:   capturedAt,
			GPS:          gps,
			GPSAccuracyM: accuracy,
			ActorUserID:  middleware.UserIDFromContext(r.Context()),
			ActorRole:    middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// SlotPhotoURL hands back a short-lived signed read URL for a slot's
// stored photo.
func SlotPhotoURL(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locationID, err := uuidParam(r, "locationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slotKey := chi.URLParam(r, "slotKey")
		url, err := svc.SlotPhotoURL(r.Context(), locationID, slotKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}
