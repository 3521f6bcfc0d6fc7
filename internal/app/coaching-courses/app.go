package coachingcourses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/coaching-courses/internal/cache"
	"github.com/magabrotheeeer/coaching-courses/internal/config"
	grpchealth "github.com/magabrotheeeer/coaching-courses/internal/grpc/health"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/health"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/jwt"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/metrics"
	"github.com/magabrotheeeer/coaching-courses/internal/migrations"
	authservice "github.com/magabrotheeeer/coaching-courses/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/coaching-courses/internal/services/catalog"
	subservice "github.com/magabrotheeeer/coaching-courses/internal/services/subscription"
	unlockservice "github.com/magabrotheeeer/coaching-courses/internal/services/unlock"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
	"github.com/magabrotheeeer/coaching-courses/internal/unlock"
)

const (
	shutdownTimeout     = 15 * time.Second
	healthCheckInterval = 10 * time.Second
)

// App — HTTP API сервиса курсов вместе с gRPC health.
type App struct {
	server     *http.Server
	grpcHealth *grpchealth.Server
	grpcAddr   string
	logger     *slog.Logger
	db         *storage.Storage
	cache      *cache.Cache
}

// New собирает зависимости приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	policy, err := unlock.NewPolicy(cfg.UnlockPolicy)
	if err != nil {
		return nil, err
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker)
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, cfg.CatalogCacheTTL, logger)
	unlockService := unlockservice.NewUnlockService(db, catalogService, policy, logger)
	subscriptionService := subservice.NewSubscriptionService(db, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:           logger,
		Auth:          authService,
		Unlock:        unlockService,
		Catalog:       catalogService,
		Subscriptions: subscriptionService,
		Health:        map[string]health.Pinger{"postgres": db, "redis": cacheRedis},
		Metrics:       m,
		MetricsPage:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RPS:           cfg.RPS,
		Burst:         cfg.Burst,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	app := &App{
		server:   srv,
		grpcAddr: cfg.GRPCHealthAddress,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
	}
	if cfg.GRPCHealthAddress != "" {
		app.grpcHealth = grpchealth.New(logger,
			map[string]grpchealth.Pinger{"postgres": db, "redis": cacheRedis},
			healthCheckInterval)
	}
	return app, nil
}

// Run запускает серверы и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	if a.grpcHealth != nil {
		lis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			_ = a.server.Close()
			a.closeResources()
			return fmt.Errorf("grpc health listen: %w", err)
		}
		go a.grpcHealth.Watch(ctx)
		go func() {
			a.logger.Info("gRPC health server starting on", slog.String("address", a.grpcAddr))
			if err := a.grpcHealth.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case err := <-errCh:
		if a.grpcHealth != nil {
			a.grpcHealth.Stop()
		}
		_ = a.server.Close()
		a.closeResources()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		if a.grpcHealth != nil {
			a.grpcHealth.Stop()
		}
		err := a.server.Shutdown(timeoutCtx)
		a.closeResources()
		return err
	}
}

func (a *App) closeResources() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
