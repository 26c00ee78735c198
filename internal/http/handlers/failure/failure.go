// Package failure переводит ошибки хранилища идентичностей в HTTP-ответы.
package failure

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/identity-mock/internal/http/response"
	"github.com/magabrotheeeer/identity-mock/internal/lib/sl"
	services "github.com/magabrotheeeer/identity-mock/internal/services/auth"
)

// StatusCode возвращает HTTP-статус и сообщение для ошибки сервиса.
func StatusCode(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrPasswordMismatch):
		return http.StatusBadRequest, services.HandleError(err).Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, services.HandleError(err).Error()
	case errors.Is(err, services.ErrEmailNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrNoProfile):
		return http.StatusNotFound, services.HandleError(err).Error()
	case errors.Is(err, services.ErrAlreadyRegistered):
		return http.StatusConflict, services.HandleError(err).Error()
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, services.ErrSomethingWentWrong.Error()
	}
}

// Render пишет ответ с ошибкой. Ошибки с кодом 5xx логируются как Error.
func Render(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code, msg := StatusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.String("reason", msg))
	}
	render.Status(r, code)
	render.JSON(w, r, response.Error(msg))
}
