package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/binflowhq/binflow-backend/api/responses"
	"github.com/binflowhq/binflow-backend/api/validators"
	"github.com/binflowhq/binflow-backend/internal/inventory"
	product "github.com/binflowhq/binflow-backend/internal/products"
	"github.com/binflowhq/binflow-backend/pkg/logger"
)

type createProductRequest struct {
	SKU               string           `json:"sku" validate:"required,min=1,max=64"`
	Name              string           `json:"name" validate:"required,min=1,max=255"`
	Description       *string          `json:"description,omitempty"`
	Unit              string           `json:"unit,omitempty"`
	MinimumStockLevel *int             `json:"minimum_stock_level,omitempty" validate:"omitempty,min=0"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description       *string          `json:"description,omitempty"`
	Unit              *string          `json:"unit,omitempty" validate:"omitempty,min=1"`
	MinimumStockLevel *int             `json:"minimum_stock_level,omitempty" validate:"omitempty,min=0"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

// ProductCreate adds an entry to the tenant catalog.
func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), actor.TenantID, product.CreateProductInput{
			SKU:               payload.SKU,
			Name:              payload.Name,
			Description:       payload.Description,
			Unit:              payload.Unit,
			MinimumStockLevel: payload.MinimumStockLevel,
			UnitPrice:         payload.UnitPrice,
			IsActive:          payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ProductUpdate applies partial catalog changes.
func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), actor.TenantID, productID, product.UpdateProductInput{
			Name:              payload.Name,
			Description:       payload.Description,
			Unit:              payload.Unit,
			MinimumStockLevel: payload.MinimumStockLevel,
			UnitPrice:         payload.UnitPrice,
			IsActive:          payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// ProductDelete removes a catalog entry with no inventory rows.
func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor.TenantID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ProductGet loads one catalog entry.
func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), actor.TenantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, found)
	}
}

// ProductList returns the tenant catalog, optionally filtered.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := product.ListFilter{
			ActiveOnly: r.URL.Query().Get("active") == "true",
			Search:     validators.SanitizeString(r.URL.Query().Get("q"), 64),
		}

		rows, err := svc.List(r.Context(), actor.TenantID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// ProductStock reports the aggregate availability plus the low-stock verdict.
func ProductStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totals, err := svc.TotalStockForProduct(r.Context(), actor.TenantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		low, err := svc.IsLowStock(r.Context(), actor.TenantID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"total_available": totals.TotalAvailable,
			"total_reserved":  totals.TotalReserved,
			"low_stock":       low,
		})
	}
}
