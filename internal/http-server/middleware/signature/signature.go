package signature

import (
	"PayIVR/internal/lib/api/response"
	"PayIVR/internal/lib/sl"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/twilio/twilio-go/client"
)

const Header = "X-Twilio-Signature"

// New rejects webhook requests whose X-Twilio-Signature does not match.
// baseURL is the public scheme and host the platform was configured with,
// since the server usually sits behind a proxy.
func New(log *slog.Logger, authToken, baseURL string) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.signature")
	log.With(mod).Info("signature middleware initialized")
	base := strings.TrimSuffix(baseURL, "/")
	validator := client.NewRequestValidator(authToken)

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			logger := log.With(
				mod,
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if err := r.ParseForm(); err != nil {
				logger.Warn("failed to parse form", sl.Err(err))
				rejected(w, r)
				return
			}

			got := r.Header.Get(Header)
			if got == "" || !validator.Validate(base+r.URL.RequestURI(), Params(r.PostForm), got) {
				logger.Warn("signature mismatch", slog.String("path", r.URL.Path))
				rejected(w, r)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// Params flattens the POST body to the single-valued form the platform signs.
func Params(form url.Values) map[string]string {
	params := make(map[string]string, len(form))
	for k := range form {
		params[k] = form.Get(k)
	}
	return params
}

func rejected(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusForbidden)
	render.JSON(w, r, response.Error("Invalid signature"))
}
