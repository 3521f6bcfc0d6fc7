// Package services собирает статус разблокировки курсов для пользователя.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/unlock"
)

// SubscriptionRepository читает подписку пользователя.
// Для существующего пользователя без подписки возвращает nil без ошибки.
type SubscriptionRepository interface {
	GetSubscription(ctx context.Context, userUID uuid.UUID) (*models.Subscription, error)
}

// CourseCatalog отдаёт опубликованные курсы.
type CourseCatalog interface {
	PublishedCourses(ctx context.Context) ([]models.Course, error)
}

// UnlockService вычисляет статус курсов на каждый запрос, ничего не сохраняя.
type UnlockService struct {
	subs    SubscriptionRepository
	catalog CourseCatalog
	policy  *unlock.Policy
	log     *slog.Logger
	now     func() time.Time
}

// NewUnlockService создает новый экземпляр UnlockService.
func NewUnlockService(subs SubscriptionRepository, catalog CourseCatalog, policy *unlock.Policy, log *slog.Logger) *UnlockService {
	return &UnlockService{
		subs:    subs,
		catalog: catalog,
		policy:  policy,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Status возвращает список курсов со статусом и сводку для пользователя.
// Ошибки хранилища возвращаются как есть, повторов нет.
func (s *UnlockService) Status(ctx context.Context, userUID uuid.UUID) (*models.UnlockReport, error) {
	const op = "services.unlock.Status"

	sub, err := s.subs.GetSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	courses, err := s.catalog.PublishedCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report, err := unlock.Build(s.policy, sub, courses, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("unlock status computed",
		slog.String("user_uid", userUID.String()),
		slog.Int("unlocked", report.Summary.UnlockedCount),
		slog.Int("total", report.Summary.TotalCount),
	)
	return report, nil
}
