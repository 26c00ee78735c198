// Package status реализует HTTP-обработчик состояния сессии.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/identity-mock/internal/http/response"
)

// Service описывает проверку состояния сессии.
type Service interface {
	IsAuthenticated(ctx context.Context) bool
	UserID() int64
}

// Status состояние текущей сессии.
type Status struct {
	Authenticated bool  `json:"authenticated"`
	UserID        int64 `json:"userId"`
}

// Handler возвращает состояние текущей сессии.
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
// @Summary Состояние сессии
// @Tags Auth
// @Produce  json
// @Success 200 {object} Status
// @Router /auth/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(Status{
		Authenticated: h.service.IsAuthenticated(r.Context()),
		UserID:        h.service.UserID(),
	}))
}
