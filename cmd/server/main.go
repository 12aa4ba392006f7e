package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/salonhq/salonhq/internal/api"
	v1 "github.com/salonhq/salonhq/internal/api/v1"
	"github.com/salonhq/salonhq/internal/cache"
	"github.com/salonhq/salonhq/internal/config"
	"github.com/salonhq/salonhq/internal/idempotency"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	"github.com/salonhq/salonhq/internal/rbac"
	"github.com/salonhq/salonhq/internal/repository"
	"github.com/salonhq/salonhq/internal/service"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Best effort; the environment usually carries the config in deployments
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// RBAC
			rbac.NewService,

			// Idempotency key generator
			idempotency.NewGenerator,

			// Repositories
			repository.NewCheckoutRepository,
			repository.NewInvoiceRepository,
			repository.NewCustomerRepository,
			repository.NewCatalogRepository,
			repository.NewBenefitRepository,

			// Services
			service.NewServiceParams,
			service.NewCheckoutService,
			service.NewInvoiceService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideHandlers(
	log *logger.Logger,
	checkoutService service.CheckoutService,
	invoiceService service.InvoiceService,
) api.Handlers {
	return api.Handlers{
		Checkout: v1.NewCheckoutHandler(checkoutService, log),
		Invoice:  v1.NewInvoiceHandler(invoiceService, log),
		Health:   v1.NewHealthHandler(),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	checkoutService service.CheckoutService,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	sweepDone := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infof("starting server on %s", cfg.Server.Address)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			go runExpirySweep(checkoutService, cfg.Checkout.SweepInterval, sweepDone, log)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			close(sweepDone)
			return srv.Shutdown(ctx)
		},
	})
}

// runExpirySweep periodically expires checkout sessions whose TTL elapsed.
// Lazy expiry on read already keeps stale sessions from being mutated; the
// sweep just reclaims sessions nobody touches again.
func runExpirySweep(checkoutService service.CheckoutService, interval time.Duration, done <-chan struct{}, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if _, err := checkoutService.ExpireStale(context.Background()); err != nil {
				log.Errorw("expiry sweep failed", "error", err)
			}
		}
	}
}
