package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rmarasigan/printshop-pos-backend/api/routes"
	"github.com/rmarasigan/printshop-pos-backend/internal/cart"
	"github.com/rmarasigan/printshop-pos-backend/internal/discount"
	"github.com/rmarasigan/printshop-pos-backend/internal/orders"
	"github.com/rmarasigan/printshop-pos-backend/internal/session"
	"github.com/rmarasigan/printshop-pos-backend/internal/settings"
	"github.com/rmarasigan/printshop-pos-backend/internal/settlement"
	"github.com/rmarasigan/printshop-pos-backend/internal/stats"
	"github.com/rmarasigan/printshop-pos-backend/pkg/config"
	"github.com/rmarasigan/printshop-pos-backend/pkg/db"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
	"github.com/rmarasigan/printshop-pos-backend/pkg/metrics"
	"github.com/rmarasigan/printshop-pos-backend/pkg/migrate"
	"github.com/rmarasigan/printshop-pos-backend/pkg/orderstore"
	"github.com/rmarasigan/printshop-pos-backend/pkg/receipt"
	"github.com/rmarasigan/printshop-pos-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stateStore, err := session.NewRedisStore(redisClient, cfg.Session.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(stateStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	discountService, err := discount.NewService(stateStore, discount.NewEmployeeRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}

	orderClient, err := orderstore.NewClient(cfg.OrderStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create order store client", err)
		os.Exit(1)
	}

	resolver, err := orders.NewResolver(orderClient, orders.NewScanCodeParser(cfg.Receipt), cfg.OrderStore.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order resolver", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(
		settings.NewSettingRepository(dbClient.DB()),
		settings.TerminalSettings{AutoPrint: cfg.FeatureFlags.AutoPrint},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	settlementService, err := settlement.NewService(
		stateStore,
		orderClient,
		settlement.NewLogRepository(dbClient.DB()),
		statsService,
		settingsService,
		receipt.NewSpoolPrinter(logg),
		resolver,
		metrics.NewSettlementMetrics(registry),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
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
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Cart:       cartService,
			Discount:   discountService,
			Resolver:   resolver,
			Settlement: settlementService,
			Stats:      statsService,
			Settings:   settingsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
