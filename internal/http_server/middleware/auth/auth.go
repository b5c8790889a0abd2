package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	resp "pokedex_service/internal/lib/api/response"
	"pokedex_service/internal/lib/jwt"
	sl "pokedex_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

var uidKey = ctxKey{}

type TokenVerifier interface {
	ParseToken(token string) (string, error)
}

// New rejects requests without a valid "Authorization: Bearer <token>"
// header and stores the token subject in the request context.
func New(log *slog.Logger, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			header := r.Header.Get("Authorization")
			if header == "" {
				log.Warn("missing authorization header")
				unauthorized(w, r, "Unauthorized: missing token")

				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				log.Warn("invalid authorization header format")
				unauthorized(w, r, "Unauthorized: invalid token format")

				return
			}

			uid, err := verifier.ParseToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					log.Info("token expired")
					unauthorized(w, r, "Unauthorized: token expired")

					return
				}

				log.Warn("invalid token", sl.Err(err))
				unauthorized(w, r, "Unauthorized: invalid token")

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUID(r.Context(), uid)))
		})
	}
}

// WithUID returns a copy of ctx carrying the authenticated user id.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey, uid)
}

// UIDFromContext returns the user id stored by New.
func UIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(uidKey).(string)

	return uid, ok && uid != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error(msg))
}
