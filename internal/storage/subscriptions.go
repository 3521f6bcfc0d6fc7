package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// subscriptionRow — колонки подписки в таблице users. У пользователя без подписки
// все колонки NULL.
type subscriptionRow struct {
	tier      sql.NullString
	period    sql.NullString
	status    sql.NullString
	startedAt sql.NullTime
}

func (r subscriptionRow) toModel(userUID uuid.UUID) (*models.Subscription, error) {
	if !r.tier.Valid {
		return nil, nil
	}
	if !r.period.Valid || !r.status.Valid || !r.startedAt.Valid {
		return nil, fmt.Errorf("%w: user %s has incomplete subscription", ErrInvalidRecord, userUID)
	}

	tier, err := models.ParseTier(r.tier.String)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	period, err := models.ParseBillingPeriod(r.period.String)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	status, err := models.ParseSubscriptionStatus(r.status.String)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return &models.Subscription{
		UserUID:       userUID,
		Tier:          tier,
		BillingPeriod: period,
		Status:        status,
		StartedAt:     r.startedAt.Time.UTC(),
	}, nil
}

// GetSubscription возвращает подписку пользователя. Если пользователь существует,
// но подписки у него нет, возвращается nil без ошибки.
func (s *Storage) GetSubscription(ctx context.Context, userUID uuid.UUID) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT package_type, billing_period, subscription_status, subscription_start
			  FROM users
			  WHERE uid = $1`
	var raw subscriptionRow
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&raw.tier, &raw.period, &raw.status, &raw.startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := raw.toModel(userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// SaveSubscription записывает новое состояние подписки и событие журнала
// в одной транзакции.
func (s *Storage) SaveSubscription(ctx context.Context, sub models.Subscription, kind models.EventKind) error {
	const op = "storage.SaveSubscription"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `UPDATE users
			  SET package_type = $1, billing_period = $2, subscription_status = $3, subscription_start = $4
			  WHERE uid = $5`,
		sub.Tier, sub.BillingPeriod, sub.Status, sub.StartedAt, sub.UserUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO subscription_events
			      (user_uid, kind, package_type, billing_period, subscription_status)
			  VALUES ($1, $2, $3, $4, $5)`,
		sub.UserUID, kind, sub.Tier, sub.BillingPeriod, sub.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSubscriptionEvents возвращает журнал изменений подписки пользователя, новые записи первыми.
func (s *Storage) ListSubscriptionEvents(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]models.SubscriptionEvent, error) {
	const op = "storage.ListSubscriptionEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, kind, package_type, billing_period, subscription_status, created_at
			  FROM subscription_events
			  WHERE user_uid = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.SubscriptionEvent, 0)
	for rows.Next() {
		var (
			e                          models.SubscriptionEvent
			kind, tier, period, status string
		)
		if err := rows.Scan(&e.ID, &e.UserUID, &kind, &tier, &period, &status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.Kind = models.EventKind(kind)
		if e.Tier, err = models.ParseTier(tier); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidRecord, err)
		}
		if e.BillingPeriod, err = models.ParseBillingPeriod(period); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidRecord, err)
		}
		if e.Status, err = models.ParseSubscriptionStatus(status); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidRecord, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListActiveSubscribers возвращает все активные подписки вместе с контактами пользователей.
func (s *Storage) ListActiveSubscribers(ctx context.Context) ([]models.SubscriberInfo, error) {
	const op = "storage.ListActiveSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username,
			      package_type, billing_period, subscription_status, subscription_start
			  FROM users
			  WHERE subscription_status = 'active'`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.SubscriberInfo
	for rows.Next() {
		var (
			info models.SubscriberInfo
			uid  uuid.UUID
			raw  subscriptionRow
		)
		if err := rows.Scan(&uid, &info.Email, &info.Username,
			&raw.tier, &raw.period, &raw.status, &raw.startedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub, err := raw.toModel(uid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if sub == nil {
			return nil, fmt.Errorf("%s: %w: user %s is active without tier", op, ErrInvalidRecord, uid)
		}
		info.Subscription = *sub
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
