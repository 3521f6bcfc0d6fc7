// Package login реализует вход клиента по имени и паролю.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	services "github.com/magabrotheeeer/coaching-courses/internal/services/auth"
)

// Request — учетные данные клиента.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service выполняет вход и выпускает токен.
type Service interface {
	Login(ctx context.Context, username, password string) (token, role string, err error)
}

// Handler обрабатывает POST /api/v1/login.
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
// @Summary Вход клиента
// @Description Проверяет имя и пароль, возвращает JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	token, role, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Warn("invalid credentials", slog.String("username", req.Username))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Info("login success", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token":    token,
		"role":     role,
		"username": req.Username,
	}))
}
