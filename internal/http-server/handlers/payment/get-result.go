package payment

import (
	"PayIVR/impl/core"
	"PayIVR/internal/http-server/middleware/authenticate"
	"PayIVR/internal/lib/api/response"
	"PayIVR/internal/lib/sl"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func GetResult(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.payment")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("key_owner", authenticate.Owner(r.Context())),
		)

		if handler == nil {
			logger.Error("payment service not available")
			render.JSON(w, r, response.Error("payment service not available"))
			return
		}

		callSid := chi.URLParam(r, "callSid")
		if callSid == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("call sid is required"))
			return
		}

		result, err := handler.GetPaymentResult(r.Context(), callSid)
		if errors.Is(err, core.ErrPaymentNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
			return
		}
		if err != nil {
			logger.Error("failed to get payment result", sl.Err(err), sl.CallSid(callSid))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get payment result"))
			return
		}

		logger.Info("payment result read", sl.CallSid(callSid), slog.String("status", string(result.Status)))
		render.JSON(w, r, response.Ok(result))
	}
}
