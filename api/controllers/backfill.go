package controllers

import (
	"net/http"

	"github.com/speccom/fieldproof-backend/api/middleware"
	"github.com/speccom/fieldproof-backend/api/responses"
	"github.com/speccom/fieldproof-backend/internal/backfill"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/logger"
)

// BackfillUpload accepts an owner-supplied photo for a location whose
// node carries a backfill override. The service picks the slot; the
// form carries photo (file), completion_photo and captured_at.
func BackfillUpload(svc backfill.Service, cfg config.ProofConfig, logg *logger.Logger) http.HandlerFunc {
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

		photo, err := svc.AssignUpload(r.Context(), backfill.AssignUploadInput{
			LocationID:         locationID,
			CompletionPhoto:    formBool(r, "completion_photo"),
			Body:               file,
			ContentType:        header.Header.Get("Content-Type"),
			EmbeddedCapturedAt: capturedAt,
			ActorUserID:        middleware.UserIDFromContext(r.Context()),
			ActorRole:          middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, photo)
	}
}
