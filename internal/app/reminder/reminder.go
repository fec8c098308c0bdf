// Package reminder собирает воркер напоминаний об окончании пробного периода.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/pawlog/internal/config"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/metrics"
	"github.com/magabrotheeeer/pawlog/internal/rabbitmq"
	reminderservice "github.com/magabrotheeeer/pawlog/internal/services/reminder"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

// App представляет приложение планировщика напоминаний.
type App struct {
	service  *reminderservice.Service
	schedule string
	db       *repository.Storage
	conn     *amqp.Connection
	ch       *amqp.Channel
	logger   *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New подключается к брокеру и базе и создает планировщик.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	// воркер без HTTP, метрики пишутся в собственный реестр
	m := metrics.New(prometheus.NewRegistry())

	return &App{
		service:  reminderservice.NewService(db, rabbitmq.NewPublisher(ch), logger, m),
		schedule: cfg.Schedule,
		db:       db,
		conn:     conn,
		ch:       ch,
		logger:   logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.service.Start(ctx, a.schedule); err != nil {
		closeResources(a.ch, a.conn, a.logger)
		_ = a.db.Close()
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down reminder scheduler")
	a.service.Stop()
	closeResources(a.ch, a.conn, a.logger)
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
