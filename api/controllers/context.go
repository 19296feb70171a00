package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/binflowhq/binflow-backend/api/middleware"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
)

// actorContext is the identity every authenticated handler works with.
type actorContext struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

func actorFromRequest(r *http.Request) (actorContext, error) {
	tenantRaw := middleware.TenantIDFromContext(r.Context())
	if tenantRaw == "" {
		return actorContext{}, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing")
	}
	tenantID, err := uuid.Parse(tenantRaw)
	if err != nil || tenantID == uuid.Nil {
		return actorContext{}, pkgerrors.New(pkgerrors.CodeForbidden, "invalid tenant context")
	}

	userRaw := middleware.UserIDFromContext(r.Context())
	if userRaw == "" {
		return actorContext{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(userRaw)
	if err != nil || userID == uuid.Nil {
		return actorContext{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid user context")
	}

	return actorContext{TenantID: tenantID, UserID: userID}, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
