// Package services содержит логику регистрации и входа клиентов.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/lib/jwt"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/password"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

// ErrInvalidCredentials возвращается при неизвестном пользователе или неверном пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает хранилище пользователей.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (uuid.UUID, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию, вход и проверку токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает клиента с ролью user и без подписки.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (uuid.UUID, error) {
	const op = "services.auth.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.RegisterUser(ctx, models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль и выпускает токен доступа.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет токен и возвращает пользователя без подписки и хеша пароля.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	uid, err := claims.UserUID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.User{
		UUID:     uid,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
