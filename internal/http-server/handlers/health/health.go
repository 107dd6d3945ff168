package health

import (
	"PayIVR/internal/lib/api/response"
	"PayIVR/internal/lib/sl"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

type Core interface {
	Health(ctx context.Context) error
}

func Health(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler.Health(r.Context()); err != nil {
			log.With(sl.Module("http.handlers.health")).Warn("unhealthy", sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("store unavailable"))
			return
		}
		render.JSON(w, r, response.Ok("ok"))
	}
}
