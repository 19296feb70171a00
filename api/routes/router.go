package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/binflowhq/binflow-backend/api/controllers"
	"github.com/binflowhq/binflow-backend/api/middleware"
	"github.com/binflowhq/binflow-backend/internal/auth"
	"github.com/binflowhq/binflow-backend/internal/inventory"
	"github.com/binflowhq/binflow-backend/internal/movements"
	product "github.com/binflowhq/binflow-backend/internal/products"
	"github.com/binflowhq/binflow-backend/internal/users"
	warehouse "github.com/binflowhq/binflow-backend/internal/warehouses"
	"github.com/binflowhq/binflow-backend/pkg/config"
	"github.com/binflowhq/binflow-backend/pkg/db"
	"github.com/binflowhq/binflow-backend/pkg/enums"
	"github.com/binflowhq/binflow-backend/pkg/logger"
	"github.com/binflowhq/binflow-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. cmd/api assembles it once
// at boot; tests swap in stubs for the slices they exercise.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DBPinger db.Pinger
	Redis    *redis.Client

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UserRepo        *users.Repository

	ProductService   product.Service
	WarehouseService warehouse.Service
	InventoryService inventory.Service
	MovementService  movements.Service

	MetricsRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger))
	})

	if deps.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.ProductService, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.ProductService, logg))
			r.Get("/{productId}/stock", controllers.ProductStock(deps.InventoryService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleManager))
				r.Post("/", controllers.ProductCreate(deps.ProductService, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(deps.ProductService, logg))
				r.Delete("/{productId}", controllers.ProductDelete(deps.ProductService, logg))
			})
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.WarehouseList(deps.WarehouseService, logg))
			r.Get("/{warehouseId}", controllers.WarehouseGet(deps.WarehouseService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleManager))
				r.Post("/", controllers.WarehouseCreate(deps.WarehouseService, logg))
				r.Patch("/{warehouseId}", controllers.WarehouseUpdate(deps.WarehouseService, logg))
				r.Delete("/{warehouseId}", controllers.WarehouseDelete(deps.WarehouseService, logg))
				r.Post("/{warehouseId}/zones", controllers.ZoneCreate(deps.WarehouseService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.UserRoleAdmin, enums.UserRoleManager))
			r.Post("/zones/{zoneId}/aisles", controllers.AisleCreate(deps.WarehouseService, logg))
			r.Post("/aisles/{aisleId}/shelves", controllers.ShelfCreate(deps.WarehouseService, logg))
			r.Post("/shelves/{shelfId}/bins", controllers.BinCreate(deps.WarehouseService, logg))
			r.Delete("/bins/{binId}", controllers.BinDelete(deps.WarehouseService, logg))
		})
		r.Get("/bins", controllers.BinList(deps.WarehouseService, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(deps.InventoryService, logg))
			r.Get("/expiring", controllers.InventoryExpiring(deps.InventoryService, logg))
			r.Post("/receive", controllers.InventoryReceive(deps.InventoryService, logg))
			r.Get("/{itemId}", controllers.InventoryGet(deps.InventoryService, logg))
			r.Delete("/{itemId}", controllers.InventoryDelete(deps.InventoryService, logg))
			r.Post("/{itemId}/release", controllers.ReservationRelease(deps.InventoryService, logg))
			r.Post("/{itemId}/adjustments", controllers.AdjustmentCreate(deps.InventoryService, logg))
			r.Get("/{itemId}/movements", controllers.MovementHistory(deps.MovementService, logg))
		})

		r.Post("/reservations", controllers.ReservationCreate(deps.InventoryService, logg))
		r.Get("/movements", controllers.MovementRecent(deps.MovementService, logg))

		r.With(middleware.RequireRoles(logg, enums.UserRoleAdmin)).
			Get("/users", controllers.UserList(deps.UserRepo, logg))
	})

	return r
}
