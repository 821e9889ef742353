package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/speccom/fieldproof-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	ProjectID *uuid.UUID
	Role      enums.ActorRole
	JTI       string
}

// AccessTokenClaims is the typed JWT issued to field clients. Role is
// the sole authorization input for the billing and override gates.
type AccessTokenClaims struct {
	UserID    uuid.UUID       `json:"user_id"`
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
	Role      enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
