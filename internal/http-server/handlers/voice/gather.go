package voice

import (
	"PayIVR/entity"
	"PayIVR/internal/lib/sl"
	"PayIVR/internal/twiml"
	"log/slog"
	"net/http"

	"github.com/ajg/form"
	"github.com/go-chi/chi/v5/middleware"
)

// GatherPayment answers the voice platform's webhook. Step names travel in
// the query string, caller input in the form body. Every answer is 200 with
// markup: any other status makes the platform drop the call.
func GatherPayment(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.voice")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("voice service not available")
			writeMarkup(w, logger, twiml.NewResponse())
			return
		}

		if err := r.ParseForm(); err != nil {
			logger.Warn("failed to parse form", sl.Err(err))
			writeMarkup(w, logger, twiml.NewResponse())
			return
		}

		// the platform posts many fields the flow never reads
		decoder := form.NewDecoder(nil)
		decoder.IgnoreUnknownKeys(true)

		var req entity.StepRequest
		err := decoder.DecodeValues(&req, r.Form)
		if err != nil {
			logger.Warn("failed to decode request", sl.Err(err))
			writeMarkup(w, logger, twiml.NewResponse())
			return
		}
		if dropped := req.Normalize(); dropped != "" {
			logger.Warn("ignoring invalid studio webhook", slog.String("studio_webhook", dropped))
		}

		if err = req.Validate(); err != nil {
			logger.Warn("invalid step request", sl.Err(err))
			writeMarkup(w, logger, twiml.NewResponse())
			return
		}

		resp, err := handler.HandleStep(r.Context(), &req)
		if err != nil {
			logger.Error("failed to handle step", sl.Err(err), sl.CallSid(req.CallSid))
			resp = twiml.NewResponse()
		}

		writeMarkup(w, logger, resp)
	}
}

func writeMarkup(w http.ResponseWriter, logger *slog.Logger, resp *twiml.Response) {
	data, err := resp.Marshal()
	if err != nil {
		logger.Error("failed to render markup", sl.Err(err))
		data, _ = twiml.NewResponse().Marshal()
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
