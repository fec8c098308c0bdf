package pawlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/pawlog/internal/cache"
	"github.com/magabrotheeeer/pawlog/internal/config"
	"github.com/magabrotheeeer/pawlog/internal/http/handlers/health"
	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/lib/jwt"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/metrics"
	"github.com/magabrotheeeer/pawlog/internal/migrations"
	"github.com/magabrotheeeer/pawlog/internal/rabbitmq"
	"github.com/magabrotheeeer/pawlog/internal/services/diary"
	"github.com/magabrotheeeer/pawlog/internal/services/entitlement"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
	"github.com/magabrotheeeer/pawlog/internal/services/onboarding"
	"github.com/magabrotheeeer/pawlog/internal/services/pets"
	"github.com/magabrotheeeer/pawlog/internal/services/role"
	"github.com/magabrotheeeer/pawlog/internal/services/session"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

const consumerWorkers = 10

// App владеет всеми ресурсами сервиса. Состояние живёт здесь, а не в глобальных переменных пакетов.
type App struct {
	server       *http.Server
	logger       *slog.Logger
	db           *repository.Storage
	cache        *cache.Cache
	roles        *role.Resolver
	entitlements *entitlement.Service
	cfg          *config.Config

	conn *amqp.Connection
	ch   *amqp.Channel
}

// New подключается к хранилищам, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	version, err := migrations.Run(db.DB, cfg.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("schema is up to date", slog.Uint64("version", uint64(version)))

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	entitlements := entitlement.NewService(db, logger, entitlement.WithMetrics(m),
		entitlement.WithCapacity(cfg.StateCacheSize, cfg.StateCacheTTL))
	gate := featuregate.New(entitlements, m)
	ob := onboarding.NewService(db, cacheRedis, logger, m,
		onboarding.WithCapacity(cfg.StateCacheSize, cfg.StateCacheTTL))
	roles := role.NewResolver(db, cacheRedis, logger)
	petService := pets.NewService(db, gate, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Tokens:       jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Limiter:      middlewarectx.NewRateLimiter(cfg.RPS, cfg.Burst, logger),
		Session:      session.NewService(roles, ob, entitlements, logger),
		Entitlements: entitlements,
		Gate:         gate,
		Onboarding:   ob,
		Roles:        roles,
		Pets:         petService,
		Diary:        diary.NewService(db, petService, gate, logger),
		Health: map[string]health.Checker{
			"postgres": db.DB.PingContext,
			"redis":    func(ctx context.Context) error { return cacheRedis.Db.Ping(ctx).Err() },
		},
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:       srv,
		logger:       logger,
		db:           db,
		cache:        cacheRedis,
		roles:        roles,
		entitlements: entitlements,
		cfg:          cfg,
	}, nil
}

// startConsumer подписывается на события subscription.updated.
// Без адреса брокера обновление идёт только по запросам клиента.
func (a *App) startConsumer(ctx context.Context) (func(), error) {
	if a.cfg.RabbitMQURL == "" {
		a.logger.Warn("rabbitmq url is not set, subscription events are disabled")
		return func() {}, nil
	}
	conn, err := rabbitmq.Connect(a.cfg.RabbitMQURL, a.cfg.RabbitMQMaxRetries, a.cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	a.conn, a.ch = conn, ch

	// состояние подписки хранится в памяти экземпляра, поэтому событие нужно каждому
	queue, err := rabbitmq.DeclareInstanceQueue(ch, rabbitmq.RefreshRoutingKey)
	if err != nil {
		return nil, err
	}
	stopped, err := rabbitmq.ConsumerMessage(ctx, a.logger, ch, queue, consumerWorkers,
		a.entitlements.HandleSubscriptionUpdated(ctx))
	if err != nil {
		return nil, err
	}
	a.logger.Info("subscription events consumer started", slog.String("queue", queue))
	return stopped, nil
}

// Run запускает HTTP-сервер и потребителя событий, при отмене ctx
// останавливает их и освобождает ресурсы.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumerStopped, err := a.startConsumer(ctx)
	if err != nil {
		a.close()
		return err
	}

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
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}

	cancel()
	consumerStopped()
	a.close()
	return err
}

func (a *App) close() {
	a.roles.Close()
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
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
