package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mesa-hq/mesa/internal/app"
	"github.com/mesa-hq/mesa/internal/audit"
	audithttp "github.com/mesa-hq/mesa/internal/audit/http"
	"github.com/mesa-hq/mesa/internal/auth"
	"github.com/mesa-hq/mesa/internal/inventory"
	"github.com/mesa-hq/mesa/internal/menu"
	"github.com/mesa-hq/mesa/internal/observability"
	"github.com/mesa-hq/mesa/internal/orders"
	"github.com/mesa-hq/mesa/internal/platform/cache"
	"github.com/mesa-hq/mesa/internal/platform/db"
	"github.com/mesa-hq/mesa/internal/promotions"
	"github.com/mesa-hq/mesa/internal/reservations"
	"github.com/mesa-hq/mesa/internal/restaurant"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/staff"
	"github.com/mesa-hq/mesa/internal/tenant"
	"github.com/mesa-hq/mesa/jobs"
)

// sessionVerifier layers the Postgres session re-check on top of the Redis
// store: both must agree before a cookie counts as a verified identity.
type sessionVerifier struct {
	sessions *shared.SessionManager
	repo     *auth.PGRepository
}

func (v sessionVerifier) Verify(ctx context.Context, sess *shared.Session) (bool, error) {
	ok, err := v.sessions.Verify(ctx, sess)
	if err != nil || !ok {
		return ok, err
	}
	return v.repo.SessionActive(ctx, sess.ID)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "mesa_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	auditWriter := audit.NewWriter(dbpool, logger, metrics)
	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audithttp.NewHandler(logger, auditService)

	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	restaurantRepo := restaurant.NewRepository(dbpool)
	staffRepo := staff.NewRepository(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, restaurantRepo, staffRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, cfg.LoginRateLimitPerMinute)

	provider := tenant.NewProvider(logger, sessionVerifier{sessions: sessionManager, repo: authRepo}, authRepo, restaurantRepo, restaurantRepo)
	guard := tenant.Middleware{Provider: provider, Logger: logger}

	restaurantService := restaurant.NewService(restaurantRepo, auditWriter)
	restaurantHandler := restaurant.NewHandler(logger, restaurantService, authRepo)

	menuRepo := menu.NewRepository(dbpool)
	publicMenuService := menu.NewPublicService(restaurantRepo, menuRepo, redisClient, cfg.PublicMenuCacheTTL, logger)
	menuService := menu.NewService(menuRepo, auditWriter, publicMenuService)
	menuHandler := menu.NewHandler(logger, menuService)
	publicMenuHandler := menu.NewPublicHandler(logger, publicMenuService)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo, auditWriter)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	promoRepo := promotions.NewRepository(dbpool)
	promoService := promotions.NewService(logger, promoRepo, auditWriter)
	promoHandler := promotions.NewHandler(logger, promoService)

	ordersRepo := orders.NewRepository(dbpool)
	ownership := tenant.NewValidator(dbpool)
	ordersService := orders.NewService(logger, ordersRepo, menuRepo, inventoryRepo, promoService, idempotencyStore, ownership, auditWriter)
	ordersHandler := orders.NewHandler(logger, ordersService)

	reservationRepo := reservations.NewRepository(dbpool)
	reservationService := reservations.NewService(reservationRepo, auditWriter)
	reservationHandler := reservations.NewHandler(logger, reservationService)

	staffService := staff.NewService(staffRepo, auditWriter)
	staffHandler := staff.NewHandler(logger, staffService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		TenantGuard:        guard,
		AuthHandler:        authHandler,
		RestaurantHandler:  restaurantHandler,
		MenuHandler:        menuHandler,
		PublicMenuHandler:  publicMenuHandler,
		OrdersHandler:      ordersHandler,
		InventoryHandler:   inventoryHandler,
		ReservationHandler: reservationHandler,
		PromotionsHandler:  promoHandler,
		StaffHandler:       staffHandler,
		AuditHandler:       auditHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	auditWriter.Flush()
}
