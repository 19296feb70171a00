package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/binflowhq/binflow-backend/api/middleware"
	"github.com/binflowhq/binflow-backend/internal/inventory"
	"github.com/binflowhq/binflow-backend/pkg/db/models"
	"github.com/binflowhq/binflow-backend/pkg/enums"
	pkgerrors "github.com/binflowhq/binflow-backend/pkg/errors"
	"github.com/binflowhq/binflow-backend/pkg/logger"
	"github.com/binflowhq/binflow-backend/pkg/pagination"
)

func TestReservationCreate(t *testing.T) {
	logg := testLogger()
	tenantID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()

	t.Run("missing tenant", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		ReservationCreate(&stubReservationService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 when tenant missing, got %d", rec.Code)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		ctx := middleware.WithTenantID(context.Background(), tenantID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		ReservationCreate(&stubReservationService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when user missing, got %d", rec.Code)
		}
	})

	t.Run("rejects zero qty", func(t *testing.T) {
		body := `{"product_id":"` + productID.String() + `","qty":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
		req = req.WithContext(actorCtx(tenantID, userID))
		rec := httptest.NewRecorder()
		ReservationCreate(&stubReservationService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for zero qty, got %d", rec.Code)
		}
	})

	t.Run("success returns lines", func(t *testing.T) {
		itemID := uuid.New()
		stub := &stubReservationService{
			reserve: func(ctx context.Context, gotTenant, gotProduct uuid.UUID, qty int, actorID uuid.UUID) ([]inventory.ReservationLine, error) {
				if gotTenant != tenantID || gotProduct != productID || qty != 8 || actorID != userID {
					t.Fatalf("unexpected reserve args: %s %s %d %s", gotTenant, gotProduct, qty, actorID)
				}
				return []inventory.ReservationLine{{InventoryItemID: itemID, Qty: 8}}, nil
			},
		}
		body := `{"product_id":"` + productID.String() + `","qty":8}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
		req = req.WithContext(actorCtx(tenantID, userID))
		rec := httptest.NewRecorder()
		ReservationCreate(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var payload struct {
			Data struct {
				Lines []inventory.ReservationLine `json:"lines"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if len(payload.Data.Lines) != 1 || payload.Data.Lines[0].InventoryItemID != itemID {
			t.Fatalf("unexpected lines %+v", payload.Data.Lines)
		}
	})

	t.Run("shortfall maps to conflict", func(t *testing.T) {
		stub := &stubReservationService{
			reserve: func(ctx context.Context, _, _ uuid.UUID, _ int, _ uuid.UUID) ([]inventory.ReservationLine, error) {
				return nil, pkgerrors.InsufficientStock("insufficient stock", 5)
			},
		}
		body := `{"product_id":"` + productID.String() + `","qty":20}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
		req = req.WithContext(actorCtx(tenantID, userID))
		rec := httptest.NewRecorder()
		ReservationCreate(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 for shortfall, got %d", rec.Code)
		}
		var payload struct {
			Error struct {
				Code    string         `json:"code"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("parse error response: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeInsufficientStock) {
			t.Fatalf("unexpected code %s", payload.Error.Code)
		}
		if payload.Error.Details["shortfall"] != float64(5) {
			t.Fatalf("unexpected shortfall %v", payload.Error.Details["shortfall"])
		}
	})
}

func TestReservationRelease(t *testing.T) {
	logg := testLogger()
	tenantID := uuid.New()
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("invalid item id", func(t *testing.T) {
		req := requestWithParam(http.MethodPost, "/api/v1/inventory/bad/release", "itemId", "not-a-uuid", strings.NewReader(`{"qty":2}`))
		req = req.WithContext(actorCtxOn(req.Context(), tenantID, userID))
		rec := httptest.NewRecorder()
		ReservationRelease(&stubReservationService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad id, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubReservationService{
			release: func(ctx context.Context, gotTenant, gotItem uuid.UUID, qty int, actorID uuid.UUID) (*models.InventoryItem, error) {
				if gotTenant != tenantID || gotItem != itemID || qty != 3 || actorID != userID {
					t.Fatalf("unexpected release args: %s %s %d %s", gotTenant, gotItem, qty, actorID)
				}
				return &models.InventoryItem{ID: gotItem, AvailableQty: 10, ReservedQty: 0}, nil
			},
		}
		req := requestWithParam(http.MethodPost, "/api/v1/inventory/"+itemID.String()+"/release", "itemId", itemID.String(), strings.NewReader(`{"qty":3}`))
		req = req.WithContext(actorCtxOn(req.Context(), tenantID, userID))
		rec := httptest.NewRecorder()
		ReservationRelease(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func actorCtx(tenantID, userID uuid.UUID) context.Context {
	return actorCtxOn(context.Background(), tenantID, userID)
}

func actorCtxOn(ctx context.Context, tenantID, userID uuid.UUID) context.Context {
	ctx = middleware.WithTenantID(ctx, tenantID.String())
	return middleware.WithUserID(ctx, userID.String())
}

func requestWithParam(method, target, param, value string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(param, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubReservationService struct {
	reserve  func(ctx context.Context, tenantID, productID uuid.UUID, qty int, actorID uuid.UUID) ([]inventory.ReservationLine, error)
	release  func(ctx context.Context, tenantID, itemID uuid.UUID, qty int, actorID uuid.UUID) (*models.InventoryItem, error)
	receive  func(ctx context.Context, tenantID, actorID uuid.UUID, input inventory.ReceiveStockInput) (*models.InventoryItem, error)
	list     func(ctx context.Context, tenantID uuid.UUID, filter inventory.ListFilter, page pagination.Params) (inventory.ItemPage, error)
	expiring func(ctx context.Context, tenantID uuid.UUID, days int) ([]models.InventoryItem, error)
}

func (s *stubReservationService) ReceiveStock(ctx context.Context, tenantID, actorID uuid.UUID, input inventory.ReceiveStockInput) (*models.InventoryItem, error) {
	if s.receive != nil {
		return s.receive(ctx, tenantID, actorID, input)
	}
	panic("unimplemented")
}

func (s *stubReservationService) Reserve(ctx context.Context, tenantID, productID uuid.UUID, qty int, actorID uuid.UUID) ([]inventory.ReservationLine, error) {
	if s.reserve != nil {
		return s.reserve(ctx, tenantID, productID, qty, actorID)
	}
	panic("unimplemented")
}

func (s *stubReservationService) Release(ctx context.Context, tenantID, itemID uuid.UUID, qty int, actorID uuid.UUID) (*models.InventoryItem, error) {
	if s.release != nil {
		return s.release(ctx, tenantID, itemID, qty, actorID)
	}
	panic("unimplemented")
}

func (s *stubReservationService) Adjust(ctx context.Context, tenantID, itemID uuid.UUID, direction enums.AdjustmentDirection, qty int, reason string, actorID uuid.UUID) (*models.InventoryItem, error) {
	panic("unimplemented")
}

func (s *stubReservationService) CanDelete(ctx context.Context, tenantID, itemID uuid.UUID) (bool, error) {
	panic("unimplemented")
}

func (s *stubReservationService) DeleteItem(ctx context.Context, tenantID, itemID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubReservationService) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	panic("unimplemented")
}

func (s *stubReservationService) ListItems(ctx context.Context, tenantID uuid.UUID, filter inventory.ListFilter, page pagination.Params) (inventory.ItemPage, error) {
	if s.list != nil {
		return s.list(ctx, tenantID, filter, page)
	}
	panic("unimplemented")
}

func (s *stubReservationService) TotalStockForProduct(ctx context.Context, tenantID, productID uuid.UUID) (inventory.StockTotals, error) {
	panic("unimplemented")
}

func (s *stubReservationService) IsLowStock(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	panic("unimplemented")
}

func (s *stubReservationService) ItemsExpiringWithin(ctx context.Context, tenantID uuid.UUID, days int) ([]models.InventoryItem, error) {
	if s.expiring != nil {
		return s.expiring(ctx, tenantID, days)
	}
	panic("unimplemented")
}
