package middleware

import (
	"net/http"

	"github.com/speccom/fieldproof-backend/api/responses"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/logger"
)

// RequireRoles rejects requests whose resolved actor role is not in the
// allowed set.
func RequireRoles(logg *logger.Logger, roles ...enums.ActorRole) func(http.Handler) http.Handler {
	allowed := make(map[enums.ActorRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[RoleFromContext(r.Context())] {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role not permitted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireBillingManager limits a route to roles that may manage
// billing state.
func RequireBillingManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logg, enums.ActorRoleOwner, enums.ActorRolePrime, enums.ActorRoleTDS)
}
