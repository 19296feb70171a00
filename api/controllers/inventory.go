package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/binflowhq/binflow-backend/api/responses"
	"github.com/binflowhq/binflow-backend/api/validators"
	"github.com/binflowhq/binflow-backend/internal/inventory"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
	"github.com/binflowhq/binflow-backend/pkg/logger"
	"github.com/binflowhq/binflow-backend/pkg/pagination"
)

type receiveStockRequest struct {
	ProductID    uuid.UUID        `json:"product_id" validate:"required"`
	BinID        uuid.UUID        `json:"bin_id" validate:"required"`
	Qty          int              `json:"qty" validate:"required,min=1"`
	ExpiryDate   *string          `json:"expiry_date,omitempty"`
	BatchNumber  *string          `json:"batch_number,omitempty" validate:"omitempty,max=64"`
	LotNumber    *string          `json:"lot_number,omitempty" validate:"omitempty,max=64"`
	ReceivedDate *string          `json:"received_date,omitempty"`
	CostPerUnit  *decimal.Decimal `json:"cost_per_unit,omitempty"`
}

// InventoryReceive books new stock into a bin.
func InventoryReceive(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiveStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expiry, err := parseDate(payload.ExpiryDate, "expiry_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		received, err := parseDate(payload.ReceivedDate, "received_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.ReceiveStock(r.Context(), actor.TenantID, actor.UserID, inventory.ReceiveStockInput{
			ProductID:    payload.ProductID,
			BinID:        payload.BinID,
			Qty:          payload.Qty,
			ExpiryDate:   expiry,
			BatchNumber:  payload.BatchNumber,
			LotNumber:    payload.LotNumber,
			ReceivedDate: received,
			CostPerUnit:  payload.CostPerUnit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// InventoryList returns one page of the tenant's inventory rows, optionally
// filtered by product or bin. The next_cursor in the response feeds the cursor
// query param of the following request.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		var filter inventory.ListFilter
		if raw := r.URL.Query().Get("product_id"); raw != "" {
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product_id"))
				return
			}
			filter.ProductID = &id
		}
		if raw := r.URL.Query().Get("bin_id"); raw != "" {
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid bin_id"))
				return
			}
			filter.BinID = &id
		}

		page, err := svc.ListItems(r.Context(), actor.TenantID, filter, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// InventoryGet loads a single inventory row.
func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		item, err := svc.GetItem(r.Context(), actor.TenantID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// InventoryDelete removes an empty inventory row.
func InventoryDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.DeleteItem(r.Context(), actor.TenantID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// InventoryExpiring lists rows whose expiry date falls inside the window.
func InventoryExpiring(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days, err := validators.ParseQueryInt(r, "days", 30, 0, 3650)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ItemsExpiringWithin(r.Context(), actor.TenantID, days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

func parseDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must be YYYY-MM-DD")
	}
	return &parsed, nil
}
