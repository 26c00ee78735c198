// Package otp реализует HTTP-обработчики запроса одноразового кода:
// для подтверждения почты и для сброса пароля.
package otp

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

// SendFunc операция отправки кода на почту.
type SendFunc func(ctx context.Context, email string) (string, error)

// Handler обрабатывает запрос на отправку кода.
type Handler struct {
	log      *slog.Logger
	op       string
	send     SendFunc
	validate *validator.Validate
}

// Service описывает обе операции отправки кода.
type Service interface {
	SendOTP(ctx context.Context, email string) (string, error)
	SendPasswordResetOTP(ctx context.Context, email string) (string, error)
}

// NewVerification создает обработчик кода подтверждения почты.
func NewVerification(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		op:       "handlers.auth.otp.verification",
		send:     service.SendOTP,
		validate: validator.New(),
	}
}

// NewPasswordReset создает обработчик кода для сброса пароля.
func NewPasswordReset(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		op:       "handlers.auth.otp.password_reset",
		send:     service.SendPasswordResetOTP,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправка одноразового кода
// @Description Имитирует отправку кода на почту. /auth/otp для подтверждения почты, /auth/password/otp для сброса пароля.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.OTPRequest true "Почта"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/otp [post]
// @Router /auth/password/otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", h.op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.OTPRequest
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

	msg, err := h.send(r.Context(), req.Email)
	if err != nil {
		failure.Render(w, r, log, err)
		return
	}

	log.Info("otp sent", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(models.MessageResponse{Message: msg}))
}
