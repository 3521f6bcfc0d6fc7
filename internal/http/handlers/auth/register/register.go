// Package register реализует регистрацию нового клиента.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

// Request — данные для регистрации.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Service создает пользователя.
type Service interface {
	Register(ctx context.Context, email, username, password string) (uuid.UUID, error)
}

// Handler обрабатывает POST /api/v1/register.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация клиента
// @Description Создает пользователя с ролью user без подписки.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Имя или email заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if errors.Is(err, storage.ErrUserExists) {
		log.Warn("user already exists", slog.String("username", req.Username))
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("user already exists"))
		return
	}
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	log.Info("user registered", slog.String("user_uid", uid.String()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user_uid": uid,
		"username": req.Username,
	}))
}
