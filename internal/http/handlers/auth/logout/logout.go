// Package logout реализует HTTP-обработчик выхода из сессии.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
)

// Service описывает операцию выхода.
type Service interface {
	Logout(ctx context.Context) string
}

// Handler обрабатывает HTTP-запросы выхода из сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Очищает сессию и перенаправляет на страницу входа. Всегда успешен.
// @Tags Auth
// @Success 303 "Перенаправление на страницу входа"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	location := h.service.Logout(r.Context())
	log.Info("session closed", slog.String("redirect", location))
	http.Redirect(w, r, location, http.StatusSeeOther)
}
