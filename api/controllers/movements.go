package controllers

import (
	"net/http"

	"github.com/binflowhq/binflow-backend/api/responses"
	"github.com/binflowhq/binflow-backend/api/validators"
	"github.com/binflowhq/binflow-backend/internal/movements"
	"github.com/binflowhq/binflow-backend/pkg/logger"
	"github.com/binflowhq/binflow-backend/pkg/pagination"
)

// MovementHistory lists the audit trail for one inventory row, oldest first.
func MovementHistory(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.HistoryForItem(r.Context(), actor.TenantID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// MovementRecent lists the tenant's latest movements across all rows.
func MovementRecent(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.RecentForTenant(r.Context(), actor.TenantID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
