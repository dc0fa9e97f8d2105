package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/solystore/pointshop-backend/api/routes"
	authsvc "github.com/solystore/pointshop-backend/internal/auth"
	checkoutsvc "github.com/solystore/pointshop-backend/internal/checkout"
	"github.com/solystore/pointshop-backend/internal/locks"
	ordersvc "github.com/solystore/pointshop-backend/internal/orders"
	productsvc "github.com/solystore/pointshop-backend/internal/products"
	topupsvc "github.com/solystore/pointshop-backend/internal/topup"
	"github.com/solystore/pointshop-backend/pkg/collections"
	"github.com/solystore/pointshop-backend/pkg/config"
	"github.com/solystore/pointshop-backend/pkg/logger"
	"github.com/solystore/pointshop-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := collections.NewStore(cfg.Data.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to open collection store", err)
		os.Exit(1)
	}

	lockManager := locks.NewManager()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	txMetrics := metrics.NewTransactionMetrics(registry)

	authService, err := authsvc.NewService(store, lockManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	productService, err := productsvc.NewService(store, lockManager)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	checkoutService, err := checkoutsvc.NewService(store, lockManager, txMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	ordersService, err := ordersvc.NewService(store)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	topupService, err := topupsvc.NewService(store, lockManager, txMetrics, logg, cfg.Topup)
	if err != nil {
		logg.Error(context.Background(), "failed to create topup service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"data": store.Dir(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			authService,
			productService,
			checkoutService,
			ordersService,
			topupService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
