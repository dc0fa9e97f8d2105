package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solystore/pointshop-backend/api/controllers"
	"github.com/solystore/pointshop-backend/api/middleware"
	authsvc "github.com/solystore/pointshop-backend/internal/auth"
	checkoutsvc "github.com/solystore/pointshop-backend/internal/checkout"
	ordersvc "github.com/solystore/pointshop-backend/internal/orders"
	productsvc "github.com/solystore/pointshop-backend/internal/products"
	topupsvc "github.com/solystore/pointshop-backend/internal/topup"
	"github.com/solystore/pointshop-backend/pkg/config"
	"github.com/solystore/pointshop-backend/pkg/logger"
)

// NewRouter wires the HTTP surface over the domain services.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	authService authsvc.Service,
	productService productsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService ordersvc.Service,
	topupService topupsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.AuthMe(authService, logg))
			r.Get("/verify", controllers.AuthVerify(authService, logg))
		})
	})

	r.Route("/product", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Get("/{productId}", controllers.ProductGet(productService, logg))
		r.Get("/{productId}/with-stocks", controllers.ProductGetWithStocks(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg), middleware.RequireAdmin(logg))
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(productService, logg))
			r.Post("/{productId}/stock", controllers.StockAdd(productService, logg))
			r.Get("/{productId}/stock", controllers.StockList(productService, logg))
			r.Delete("/stock/{stockId}", controllers.StockDelete(productService, logg))
		})
	})

	r.Route("/order", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/", controllers.OrderPlace(checkoutService, logg))
		r.Get("/history", controllers.OrderHistory(ordersService, logg))
		r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
	})

	r.Route("/topup", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/redeem", controllers.TopupRedeem(topupService, logg))
		r.Get("/points", controllers.TopupPoints(topupService, logg))
		r.Get("/history", controllers.TopupHistory(topupService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/generate", controllers.TopupGenerate(topupService, logg))
			r.Get("/codes", controllers.TopupListCodes(topupService, logg))
		})
	})

	return r
}
