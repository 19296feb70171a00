package controllers

import (
	"net/http"

	"github.com/binflowhq/binflow-backend/api/responses"
	"github.com/binflowhq/binflow-backend/api/validators"
	"github.com/binflowhq/binflow-backend/internal/inventory"
	"github.com/binflowhq/binflow-backend/pkg/enums"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
	"github.com/binflowhq/binflow-backend/pkg/logger"
)

type adjustRequest struct {
	Direction string `json:"direction" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1"`
	Reason    string `json:"reason" validate:"required,max=500"`
}

// AdjustmentCreate applies a manual correction to one inventory row.
func AdjustmentCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload adjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		direction, err := enums.ParseAdjustmentDirection(payload.Direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "direction must be increase or decrease"))
			return
		}

		item, err := svc.Adjust(r.Context(), actor.TenantID, itemID, direction, payload.Qty, payload.Reason, actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}
