// Package current реализует HTTP-обработчик текущего профиля сессии.
// Перед чтением профиль восстанавливается из хранилища сессии.
package current

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/failure"
	"github.com/magabrotheeeer/identity-mock/internal/http/response"
	"github.com/magabrotheeeer/identity-mock/internal/models"
	services "github.com/magabrotheeeer/identity-mock/internal/services/auth"
)

// Service описывает восстановление и чтение текущего профиля.
type Service interface {
	FetchAndStoreUserProfile(ctx context.Context)
	CurrentProfile(ctx context.Context) *models.UserProfile
}

// Handler возвращает текущий профиль сессии.
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
// @Summary Текущий профиль
// @Tags Profile
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} response.ErrorResponse "Профиля нет"
// @Router /profile/current [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.current"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.service.FetchAndStoreUserProfile(r.Context())
	profile := h.service.CurrentProfile(r.Context())
	if profile == nil {
		failure.Render(w, r, log, services.ErrNoProfile)
		return
	}
	render.JSON(w, r, response.OKWithData(profile))
}
