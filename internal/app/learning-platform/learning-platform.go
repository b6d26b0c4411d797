package learningplatform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/learning-platform/internal/cache"
	"github.com/magabrotheeeer/learning-platform/internal/config"
	"github.com/magabrotheeeer/learning-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/learning-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/learning-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/learning-platform/internal/lib/sl"
	"github.com/magabrotheeeer/learning-platform/internal/lib/txn"
	"github.com/magabrotheeeer/learning-platform/internal/metrics"
	"github.com/magabrotheeeer/learning-platform/internal/migrations"
	"github.com/magabrotheeeer/learning-platform/internal/rabbitmq"
	"github.com/magabrotheeeer/learning-platform/internal/services/access"
	"github.com/magabrotheeeer/learning-platform/internal/services/catalog"
	"github.com/magabrotheeeer/learning-platform/internal/services/packages"
	"github.com/magabrotheeeer/learning-platform/internal/services/payment"
	"github.com/magabrotheeeer/learning-platform/internal/services/quiz"
	"github.com/magabrotheeeer/learning-platform/internal/services/wallet"
	"github.com/magabrotheeeer/learning-platform/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App is the HTTP API process.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []io.Closer
}

// New connects every dependency, applies migrations and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "learningplatform.New"
	a := &App{logger: logger}

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, db)
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pingers := map[string]health.Pinger{"postgres": db}

	var packageCache packages.Cache
	if cfg.RedisAddress != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, redisCache)
		packageCache = redisCache
		pingers["redis"] = redisCache
	} else {
		logger.Warn("redis address is empty, package list is not cached")
	}

	m := metrics.New()
	opts := []payment.Option{payment.WithMetrics(m)}

	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(ctx, cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
		if err != nil {
			// purchases work without the broker
			logger.Error("failed to connect to rabbitmq, purchase events disabled", sl.Err(err))
		} else {
			a.closers = append(a.closers, pub)
			opts = append(opts, payment.WithPublisher(pub))
		}
	}

	var adminID uuid.UUID
	if cfg.PrimaryAdminID != "" {
		adminID, err = uuid.Parse(cfg.PrimaryAdminID)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: wallet.primary_admin_id: %w", op, err)
		}
		opts = append(opts, payment.WithPrimaryAdmin(adminID))
	}

	services := Services{
		Tokens:   jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.Issuer, time.Hour),
		Access:   access.New(db, logger),
		Payment:  payment.New(db, txn.NewGenerator(), logger, opts...),
		Quiz:     quiz.New(db, m, logger),
		Packages: packages.New(db, packageCache, cfg.PackagesTTL, logger),
		Catalog:  catalog.New(db, logger),
		Wallet:   wallet.New(db, adminID, logger),
		Metrics:  m,
		Limiter:  middlewarectx.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		Health:   pingers,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
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

// close releases dependencies in reverse order of acquisition.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close dependency", sl.Err(err))
		}
	}
	a.closers = nil
}
