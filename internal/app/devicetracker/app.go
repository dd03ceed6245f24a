// Package devicetracker собирает сервис учёта поисков устройств.
package devicetracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/phytocheck/internal/cache"
	"github.com/magabrotheeeer/phytocheck/internal/config"
	"github.com/magabrotheeeer/phytocheck/internal/http/handlers/health"
	"github.com/magabrotheeeer/phytocheck/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
	"github.com/magabrotheeeer/phytocheck/internal/metrics"
	"github.com/magabrotheeeer/phytocheck/internal/migrations"
	deviceservice "github.com/magabrotheeeer/phytocheck/internal/services/device"
	"github.com/magabrotheeeer/phytocheck/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App объединяет HTTP-сервер и его зависимости.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	cache     *cache.Cache
	publisher *rabbitmq.Publisher
}

// New подключает зависимости и регистрирует маршруты. Недоступные
// PostgreSQL, Redis или RabbitMQ не мешают запуску: сервис работает
// в деградированном режиме.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{logger: logger}
	var opts []deviceservice.Option
	deps := map[string]health.Pinger{
		"postgres": nil,
		"redis":    nil,
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	opts = append(opts, deviceservice.WithMetrics(m))

	var repo deviceservice.DeviceRepository
	if cfg.StorageConnectionString != "" {
		db, err := storage.New(cfg.StorageConnectionString)
		switch {
		case err != nil:
			logger.Warn("postgres unavailable, running degraded", sl.Err(err))
		default:
			if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
				_ = db.Close()
				return nil, err
			}
			app.db = db
			repo = db
			deps["postgres"] = db
		}
	} else {
		logger.Warn("storage connection string is empty, running degraded")
	}

	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis unavailable, cache disabled", sl.Err(err))
		} else {
			app.cache = c
			deps["redis"] = c
			opts = append(opts, deviceservice.WithCache(c, cfg.CacheTTL))
		}
	}

	if cfg.RabbitMQ.URL != "" {
		if p, err := newPublisher(cfg.RabbitMQ); err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", sl.Err(err))
		} else {
			app.publisher = p
			opts = append(opts, deviceservice.WithPublisher(p))
		}
	}

	service := deviceservice.NewDeviceService(repo, cfg.FreeSearchLimit, logger, opts...)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, service, health.New(logger, deps),
		rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst))

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func newPublisher(cfg config.RabbitMQ) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(cfg.URL, 3, time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetDeviceQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return rabbitmq.NewPublisher(ch, cfg.Exchange), nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq publisher", sl.Err(err))
		}
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
