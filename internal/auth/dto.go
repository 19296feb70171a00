package auth

import (
	"github.com/google/uuid"

	"github.com/binflowhq/binflow-backend/internal/users"
)

// LoginRequest contains the credentials submitted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the minted token and the authenticated user.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	User        users.UserDTO `json:"user"`
}

// RegisterRequest contains the payload required to onboard a new tenant with
// its first admin account.
type RegisterRequest struct {
	TenantName string `json:"tenant_name" validate:"required"`
	TenantSlug string `json:"tenant_slug" validate:"required,lowercase,alphanum|containsany=-"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
}

// RegisterResponse reports the ids created during onboarding.
type RegisterResponse struct {
	TenantID uuid.UUID `json:"tenant_id"`
	UserID   uuid.UUID `json:"user_id"`
}
