// Package resetpassword реализует HTTP-обработчик сброса пароля по одноразовому коду.
package resetpassword

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

// Service описывает сброс пароля.
type Service interface {
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error)
}

// Handler обрабатывает HTTP-запросы сброса пароля.
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
// @Summary Сброс пароля
// @Description Проверяет почту, код и совпадение нового пароля с повтором, затем меняет пароль.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.ForgotPasswordRequest true "Почта, код и новый пароль"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Неверный код или пароли не совпадают"
// @Failure 404 {object} response.ErrorResponse "Почта не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/password/reset [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ForgotPasswordRequest
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

	msg, err := h.service.ForgotPassword(r.Context(), req)
	if err != nil {
		failure.Render(w, r, log, err)
		return
	}

	log.Info("password updated", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(models.MessageResponse{Message: msg}))
}
