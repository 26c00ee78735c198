// Package get реализует HTTP-обработчик чтения профиля из хранилища сессии.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/failure"
	"github.com/magabrotheeeer/identity-mock/internal/http/response"
	"github.com/magabrotheeeer/identity-mock/internal/models"
)

// Service описывает чтение профиля из сессии.
type Service interface {
	GetProfile(ctx context.Context) (*models.UserProfile, error)
}

// Handler возвращает профиль, сохранённый в сессии.
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
// @Summary Профиль из сессии
// @Tags Profile
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "В сессии нет профиля"
// @Router /profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	profile, err := h.service.GetProfile(r.Context())
	if err != nil {
		failure.Render(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(profile))
}
