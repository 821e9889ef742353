package controllers

import (
	"net/http"

	"github.com/speccom/fieldproof-backend/api/middleware"
	"github.com/speccom/fieldproof-backend/api/responses"
	"github.com/speccom/fieldproof-backend/api/validators"
	"github.com/speccom/fieldproof-backend/internal/nodes"
	"github.com/speccom/fieldproof-backend/pkg/logger"
)

// GetNode returns the node with its derived completion snapshot.
func GetNode(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.NodeView(r.Context(), nodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func StartNode(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := nodes.StartNodeInput{
			NodeID:      nodeID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}
		if err := svc.StartNode(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "active"})
	}
}

func CompleteNode(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := nodes.CompleteNodeInput{
			NodeID:      nodeID,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}
		if err := svc.CompleteNode(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "complete"})
	}
}

type markReadyRequest struct {
	Ready bool `json:"ready"`
}

func MarkNodeReady(svc nodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodeID, err := uuidParam(r, "nodeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req markReadyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := nodes.MarkReadyInput{
			NodeID:      nodeID,
			Ready:       req.Ready,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		}
		if err := svc.MarkReady(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"ready_for_billing": req.Ready})
	}
}
