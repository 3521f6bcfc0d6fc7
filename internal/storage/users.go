package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// RegisterUser сохраняет нового пользователя без подписки и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID uuid.UUID
	query := `INSERT INTO users (email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя вместе с подпиской по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role,
			      package_type, billing_period, subscription_status, subscription_start
			  FROM users
			  WHERE username = $1`
	var (
		u   models.User
		raw subscriptionRow
	)
	err := s.DB.QueryRowContext(ctx, query, username).Scan(&u.UUID, &u.Email, &u.Username,
		&u.PasswordHash, &u.Role, &raw.tier, &raw.period, &raw.status, &raw.startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.Subscription, err = raw.toModel(u.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
