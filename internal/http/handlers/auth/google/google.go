// Package google реализует HTTP-обработчик имитации входа через Google.
// Код авторизации принимается, но не проверяется.
package google

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/failure"
	"github.com/magabrotheeeer/identity-mock/internal/http/response"
	"github.com/magabrotheeeer/identity-mock/internal/lib/sl"
	"github.com/magabrotheeeer/identity-mock/internal/models"
)

// Service описывает имитацию входа через Google.
type Service interface {
	GoogleLogin(ctx context.Context, code string) (*models.AuthResponse, error)
}

// Handler обрабатывает HTTP-запросы входа через Google.
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
// @Summary Вход через Google
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.ExternalLoginRequest true "Код авторизации"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/google [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.google"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ExternalLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	resp, err := h.service.GoogleLogin(r.Context(), req.Code)
	if err != nil {
		failure.Render(w, r, log, err)
		return
	}

	render.JSON(w, r, response.OKWithData(resp))
}
