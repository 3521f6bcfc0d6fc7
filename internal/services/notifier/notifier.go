// Package services находит курсы, открывшиеся у подписчиков за последнее окно,
// и публикует по ним уведомления.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/coaching-courses/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/unlock"
)

// SubscriberRepository отдаёт активные подписки с контактами.
type SubscriberRepository interface {
	ListActiveSubscribers(ctx context.Context) ([]models.SubscriberInfo, error)
}

// CourseCatalog отдаёт опубликованные курсы.
type CourseCatalog interface {
	PublishedCourses(ctx context.Context) ([]models.Course, error)
}

// Publisher отправляет сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// NotifierService публикует course_unlocked для курсов, открывшихся в окне (now-window, now].
// Состояние между запусками не хранится, поэтому окно должно совпадать с периодом расписания.
type NotifierService struct {
	subs      SubscriberRepository
	catalog   CourseCatalog
	policy    *unlock.Policy
	publisher Publisher
	window    time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(subs SubscriberRepository, catalog CourseCatalog, policy *unlock.Policy,
	publisher Publisher, window time.Duration, log *slog.Logger) *NotifierService {
	return &NotifierService{
		subs:      subs,
		catalog:   catalog,
		policy:    policy,
		publisher: publisher,
		window:    window,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run выполняет один проход и возвращает число отправленных сообщений.
// Ошибка одного подписчика не останавливает остальных.
func (s *NotifierService) Run(ctx context.Context) (int, error) {
	const op = "services.notifier.Run"
	now := s.now()
	from := now.Add(-s.window)

	subscribers, err := s.subs.ListActiveSubscribers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(subscribers) == 0 {
		s.log.Info("no active subscribers")
		return 0, nil
	}
	courses, err := s.catalog.PublishedCourses(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	published := 0
	for _, info := range subscribers {
		if err := ctx.Err(); err != nil {
			return published, fmt.Errorf("%s: %w", op, err)
		}
		log := s.log.With(slog.String("user_uid", info.UserUID.String()))

		unlocked, err := unlock.UnlockedBetween(s.policy, &info.Subscription, courses, from, now)
		if err != nil {
			log.Warn("skip subscriber", sl.Err(err))
			continue
		}
		for _, c := range unlocked {
			msg := models.CourseUnlockedMessage{
				UserUID:    info.UserUID,
				Email:      info.Email,
				Username:   info.Username,
				CourseID:   c.CourseID,
				Title:      c.Title,
				UnlockedAt: *c.UnlockDate,
			}
			if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyCourseUnlocked, msg); err != nil {
				log.Error("failed to publish message", slog.Int64("course_id", c.CourseID), sl.Err(err))
				continue
			}
			published++
		}
	}

	s.log.Info("notifier run finished",
		slog.Int("subscribers", len(subscribers)),
		slog.Int("published", published),
	)
	return published, nil
}
