// Package services содержит бизнес-логику жизненного цикла подписки:
// активацию, продление, смену уровня или периода оплаты и отмену.
// Каждое изменение записывается в журнал вместе с новым состоянием.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// ErrSubscriptionNotActive возвращается при отмене неактивной подписки.
var ErrSubscriptionNotActive = errors.New("subscription is not active")

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// GetSubscription возвращает подписку пользователя или nil, если её нет.
	GetSubscription(ctx context.Context, userUID uuid.UUID) (*models.Subscription, error)
	// SaveSubscription сохраняет состояние подписки и событие журнала.
	SaveSubscription(ctx context.Context, sub models.Subscription, kind models.EventKind) error
	// ListSubscriptionEvents возвращает журнал изменений с пагинацией.
	ListSubscriptionEvents(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]models.SubscriptionEvent, error)
}

// SubscriptionService реализует изменения подписки.
type SubscriptionService struct {
	repo SubscriptionRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Get возвращает текущую подписку пользователя, nil если её нет.
func (s *SubscriptionService) Get(ctx context.Context, userUID uuid.UUID) (*models.Subscription, error) {
	return s.repo.GetSubscription(ctx, userUID)
}

// Change применяет подтверждённую оплату уровня tier с периодом period.
// Неактивная подписка активируется заново с текущей датой начала,
// у активной дата начала сохраняется, чтобы не сбивать график открытия курсов.
func (s *SubscriptionService) Change(ctx context.Context, userUID uuid.UUID, tier models.Tier, period models.BillingPeriod) (*models.Subscription, models.EventKind, error) {
	const op = "services.subscription.Change"

	current, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	next := models.Subscription{
		UserUID:       userUID,
		Tier:          tier,
		BillingPeriod: period,
		Status:        models.StatusActive,
	}
	kind := changeKind(current, tier, period)
	if kind == models.EventActivated {
		next.StartedAt = s.now()
	} else {
		next.StartedAt = current.StartedAt
	}

	if err := s.repo.SaveSubscription(ctx, next, kind); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription changed",
		slog.String("user_uid", userUID.String()),
		slog.String("kind", string(kind)),
		slog.String("tier", string(tier)),
		slog.String("billing_period", string(period)),
	)
	return &next, kind, nil
}

func changeKind(current *models.Subscription, tier models.Tier, period models.BillingPeriod) models.EventKind {
	if !current.IsActive() {
		return models.EventActivated
	}
	switch {
	case tier.Rank() > current.Tier.Rank():
		return models.EventUpgraded
	case tier.Rank() < current.Tier.Rank():
		return models.EventDowngraded
	case period != current.BillingPeriod:
		return models.EventPeriodChanged
	default:
		return models.EventRenewed
	}
}

// Cancel отменяет активную подписку. Запись остаётся в базе со статусом cancelled.
func (s *SubscriptionService) Cancel(ctx context.Context, userUID uuid.UUID) (*models.Subscription, error) {
	const op = "services.subscription.Cancel"

	current, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !current.IsActive() {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotActive)
	}

	next := *current
	next.Status = models.StatusCancelled
	if err := s.repo.SaveSubscription(ctx, next, models.EventCancelled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription cancelled", slog.String("user_uid", userUID.String()))
	return &next, nil
}

// Events возвращает журнал изменений подписки пользователя.
// Пустой журнал неизвестного пользователя дает storage.ErrUserNotFound.
func (s *SubscriptionService) Events(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]models.SubscriptionEvent, error) {
	const op = "services.SubscriptionService.Events"

	events, err := s.repo.ListSubscriptionEvents(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(events) > 0 {
		return events, nil
	}
	if _, err := s.repo.GetSubscription(ctx, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}
