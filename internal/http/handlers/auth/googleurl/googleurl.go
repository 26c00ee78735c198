// Package googleurl реализует HTTP-обработчик, который выдаёт адрес страницы
// согласия Google для входа через внешний провайдер. Сетевых запросов нет.
package googleurl

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/magabrotheeeer/identity-mock/internal/config"
	"github.com/magabrotheeeer/identity-mock/internal/http/response"
)

// Consent адрес страницы согласия и значение state для проверки ответа.
type Consent struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// Handler выдаёт адрес страницы согласия внешнего провайдера.
type Handler struct {
	log    *slog.Logger
	oauth  *oauth2.Config
	stateF func() string
}

// New создает обработчик по настройкам внешнего входа.
func New(log *slog.Logger, cfg config.ExternalLogin) *Handler {
	return &Handler{
		log: log,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
			Endpoint:    endpoints.Google,
		},
		stateF: func() string { return uuid.New().String() },
	}
}

// ServeHTTP godoc
// @Summary Адрес входа через Google
// @Tags Auth
// @Produce  json
// @Success 200 {object} Consent
// @Router /auth/google/url [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.googleurl"

	state := h.stateF()
	h.log.Info("consent url issued",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("state", state),
	)

	render.JSON(w, r, response.OKWithData(Consent{
		URL:   h.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline),
		State: state,
	}))
}
