// Package existing реализует HTTP-обработчик проверки, зарегистрирована ли почта.
package existing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/identity-mock/internal/http/response"
)

// Service описывает проверку наличия почты.
type Service interface {
	CheckExistingUser(ctx context.Context, email string) bool
}

// Handler обрабатывает HTTP-запросы проверки почты.
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
// @Summary Проверка почты
// @Tags Auth
// @Produce  json
// @Param email query string true "Почта"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} response.ErrorResponse "Не указана почта"
// @Router /auth/existing [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.existing"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email := r.URL.Query().Get("email")
	if email == "" {
		log.Warn("email query parameter is empty")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("email query parameter is required"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]bool{
		"exists": h.service.CheckExistingUser(r.Context(), email),
	}))
}
