// Package middlewarectx содержит HTTP middleware сервиса.
//
// TokenMiddleware проверяет токен доступа в заголовке Authorization и
// в случае успеха кладёт идентификатор пользователя в контекст запроса.
// Без валидного токена возвращается HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/identity-mock/internal/http/response"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID ключ идентификатора пользователя в контексте.
	UserID Key = "user_id"
)

// TokenValidator описывает проверку токена доступа.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) bool
	UserID() int64
}

// TokenMiddleware возвращает middleware, которое пропускает запрос дальше
// только с заголовком "Authorization: Bearer <token>" и валидным токеном.
func TokenMiddleware(svc TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.TokenMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			if !svc.ValidateToken(r.Context(), token) {
				log.Warn("invalid token or no active session")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid token or no active session"))
				return
			}
			ctx := context.WithValue(r.Context(), UserID, svc.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
