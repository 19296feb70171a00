package controllers

import (
	"net/http"

	"github.com/binflowhq/binflow-backend/api/responses"
	"github.com/binflowhq/binflow-backend/internal/users"
	"github.com/binflowhq/binflow-backend/pkg/logger"
)

// UserList returns every user in the actor's tenant.
func UserList(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListByTenant(r.Context(), actor.TenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]users.UserDTO, 0, len(rows))
		for i := range rows {
			dtos = append(dtos, users.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, dtos)
	}
}
