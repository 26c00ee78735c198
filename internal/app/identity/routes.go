package identity

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/identity-mock/internal/config"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/existing"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/google"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/googleurl"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/otp"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/status"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/profile/current"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/profile/get"
	"github.com/magabrotheeeer/identity-mock/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/identity-mock/internal/http/middlewarectx"
	services "github.com/magabrotheeeer/identity-mock/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, authService *services.AuthService, metrics *middlewarectx.Metrics, gatherer prometheus.Gatherer) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Отправка кодов ограничена по частоте
			r.With(middlewarectx.RateLimitMiddleware(logger, cfg.RPS, cfg.Burst)).
				Post("/otp", otp.NewVerification(logger, authService).ServeHTTP)
			r.With(middlewarectx.RateLimitMiddleware(logger, cfg.RPS, cfg.Burst)).
				Post("/password/otp", otp.NewPasswordReset(logger, authService).ServeHTTP)

			r.Post("/verify-email", verify.New(logger, authService).ServeHTTP)
			r.Post("/register", register.New(logger, authService).ServeHTTP)
			r.Post("/login", login.New(logger, authService).ServeHTTP)
			r.Post("/password/reset", resetpassword.New(logger, authService).ServeHTTP)
			r.Post("/logout", logout.New(logger, authService).ServeHTTP)
			r.Get("/existing", existing.New(logger, authService).ServeHTTP)
			r.Get("/google/url", googleurl.New(logger, cfg.ExternalLogin).ServeHTTP)
			r.Post("/google", google.New(logger, authService).ServeHTTP)
			r.Get("/status", status.New(logger, authService).ServeHTTP)
		})

		// Группа с проверкой токена
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.TokenMiddleware(authService, logger))
			r.Get("/profile", get.New(logger, authService).ServeHTTP)
			r.Get("/profile/current", current.New(logger, authService).ServeHTTP)
			r.Put("/profile", update.New(logger, authService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
