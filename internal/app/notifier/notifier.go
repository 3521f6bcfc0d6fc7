// Package notifier запускает по расписанию поиск открывшихся курсов и
// публикацию уведомлений о них.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/coaching-courses/internal/cache"
	"github.com/magabrotheeeer/coaching-courses/internal/config"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/metrics"
	catalogservice "github.com/magabrotheeeer/coaching-courses/internal/services/catalog"
	notifierservice "github.com/magabrotheeeer/coaching-courses/internal/services/notifier"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
	"github.com/magabrotheeeer/coaching-courses/internal/unlock"
)

// App представляет приложение рассылки уведомлений.
type App struct {
	cron          *cron.Cron
	metricsServer *http.Server
	conn          *amqp.Connection
	ch            *amqp.Channel
	db            *storage.Storage
	cache         *cache.Cache
	logger        *slog.Logger
}

// waitForDB ждет, пока API-сервис применит миграции.
func waitForDB(ctx context.Context, db *storage.Storage, logger *slog.Logger) error {
	for attempt := range 10 {
		err := storage.CheckDatabaseReady(ctx, db)
		if err == nil {
			return nil
		}
		logger.Warn("database is not ready", slog.Int("attempt", attempt+1), sl.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return errors.New("database not ready after retries")
}

// New создает новый экземпляр приложения рассылки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	policy, err := unlock.NewPolicy(cfg.UnlockPolicy)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger}

	a.conn, err = rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	a.db, err = storage.New(cfg.StorageConnectionString)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, a.db, logger); err != nil {
		a.closeResources()
		return nil, err
	}

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	catalog := catalogservice.NewCatalogService(a.db, a.cache, cfg.CatalogCacheTTL, logger)
	publisher := rabbitmq.NewPublisher(a.ch, rabbitmq.NotificationsExchange)
	service := notifierservice.NewNotifierService(a.db, catalog, policy, publisher, cfg.Window, logger)

	a.cron, err = NewScheduler(ctx, cfg.Schedule, NewJob(service, m, logger), logger)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		a.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return a, nil
}

// Run запускает расписание и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if a.metricsServer != nil {
		go func() {
			a.logger.Info("metrics server starting on", slog.String("address", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", sl.Err(err))
			}
		}()
	}

	a.cron.Start()
	a.logger.Info("notifier scheduled", slog.Int("jobs", len(a.cron.Entries())))

	<-ctx.Done()

	a.logger.Info("shutting down notifier service")
	<-a.cron.Stop().Done()
	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to stop metrics server", sl.Err(err))
		}
	}
	a.closeResources()
	return nil
}

func (a *App) closeResources() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}
}
