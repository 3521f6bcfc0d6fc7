// Package middlewarectx содержит HTTP middleware: проверку JWT, доступ по роли
// и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// Key — тип ключей контекста запроса.
type Key string

const (
	// User — имя пользователя.
	User Key = "username"
	// Role — роль пользователя.
	Role Key = "role"
	// UserUID — uuid.UUID пользователя.
	UserUID Key = "user_uid"
)

// Service проверяет токен доступа.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// JWTMiddleware пропускает запрос дальше только с валидным токеном в заголовке
// Authorization и кладёт в контекст имя, роль и UID пользователя.
func JWTMiddleware(auth Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			user, err := auth.ValidateToken(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), User, user.Username)
			ctx = context.WithValue(ctx, Role, user.Role)
			ctx = context.WithValue(ctx, UserUID, user.UUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserUIDFromContext возвращает UID, положенный JWTMiddleware.
func UserUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(UserUID).(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return uuid.Nil, false
	}
	return uid, true
}

// AdminOnly отвечает 403 всем, у кого в контексте нет роли admin.
func AdminOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role, _ := r.Context().Value(Role).(string); role != models.RoleAdmin {
				log.Warn("admin access denied",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.Any("username", r.Context().Value(User)),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
