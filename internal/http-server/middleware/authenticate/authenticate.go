package authenticate

import (
	"PayIVR/entity"
	"PayIVR/internal/lib/api/response"
	"PayIVR/internal/lib/sl"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
}

type ownerKey struct{}

// Owner is the holder of the API key that authorized the request.
func Owner(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// New requires a bearer API key and records its owner on the request
// context for the handlers' logs.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			remote := r.RemoteAddr
			if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
				remote = forwarded
			}
			logger := log.With(
				mod,
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", remote),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				logger.Warn("missing bearer key")
				authFailed(w, r, "Authorization header not found")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" || auth == nil {
				logger.Warn("missing bearer key")
				authFailed(w, r, "Token not found")
				return
			}

			user, err := auth.AuthenticateByToken(token)
			if err != nil {
				logger.Warn("api key rejected", sl.Secret("token", token), sl.Err(err))
				authFailed(w, r, "Unauthorized: token not found")
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey{}, user.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
