// Package reminder по расписанию ищет пробные периоды, которые заканчиваются
// завтра, и отправляет напоминания в брокер.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/metrics"
	"github.com/magabrotheeeer/pawlog/internal/models"
)

// Exchange и RoutingKey куда публикуются напоминания.
const (
	Exchange   = "notifications"
	RoutingKey = "trial"
)

// Repository ищет пробные периоды.
type Repository interface {
	FindTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]models.TrialReminder, error)
}

// Publisher публикует сообщение в брокер.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Service планировщик напоминаний.
type Service struct {
	repo    Repository
	pub     Publisher
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	cron    *cron.Cron
}

// NewService создает Service.
func NewService(repo Repository, pub Publisher, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		pub:     pub,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// RunOnce публикует напоминания для пробных периодов, заканчивающихся
// в следующие календарные сутки UTC. Возвращает число отправленных сообщений.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	const op = "reminder.RunOnce"
	log := s.log.With(slog.String("op", op))

	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	trials, err := s.repo.FindTrialsEndingBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(trials) == 0 {
		log.Info("no trials ending tomorrow")
		return 0, nil
	}

	published := 0
	for _, t := range trials {
		if err := s.pub.Publish(Exchange, RoutingKey, t); err != nil {
			log.Error("failed to publish trial reminder", sl.UserID(t.UserID), sl.Err(err))
			continue
		}
		s.metrics.ReminderPublished()
		published++
	}
	log.Info("trial reminders published", slog.Int("found", len(trials)), slog.Int("published", published))
	return published, nil
}

// Start запускает задачу по cron-расписанию. Расписание трактуется в UTC.
func (s *Service) Start(ctx context.Context, schedule string) error {
	const op = "reminder.Start"
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("trial reminder run failed", sl.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: invalid schedule %q: %w", op, schedule, err)
	}
	s.cron = c
	c.Start()
	s.log.Info("trial reminder scheduler started", slog.String("schedule", schedule))
	return nil
}

// Stop останавливает планировщик и дожидается текущего запуска.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
