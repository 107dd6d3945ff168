package api

import (
	"PayIVR/internal/config"
	"PayIVR/internal/http-server/handlers/errors"
	"PayIVR/internal/http-server/handlers/health"
	"PayIVR/internal/http-server/handlers/payment"
	"PayIVR/internal/http-server/handlers/voice"
	"PayIVR/internal/http-server/middleware/authenticate"
	"PayIVR/internal/http-server/middleware/signature"
	"PayIVR/internal/lib/sl"
	"PayIVR/internal/ws"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	voice.Core
	payment.Core
	health.Core
}

// New builds the server. hub and metrics are optional.
func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub, metrics http.Handler) *Server {
	server := &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  NewRouter(conf, log, handler, hub, metrics),
		ErrorLog: httpLog,
	}
	return server
}

func NewRouter(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub, metrics http.Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/healthz", health.Health(log, handler))
	if metrics != nil {
		router.Handle(conf.Metrics.Path, metrics)
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(conf.Listen.Timeout))
		if conf.Voice.ValidateSignature {
			base := fmt.Sprintf("%s://%s", conf.Voice.Scheme, conf.Voice.Domain)
			r.Use(signature.New(log, conf.Voice.AuthToken, base))
		}
		r.Post(conf.Voice.Path, voice.GatherPayment(log, handler))
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		if hub != nil {
			// token comes in the query, browsers cannot set headers on upgrade
			v1.Get("/calls/ws", func(w http.ResponseWriter, r *http.Request) {
				ws.ServeWs(hub, handler, log, w, r)
			})
		}
		v1.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(conf.Listen.Timeout))
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(authenticate.New(log, handler))
			r.Get("/payment/{callSid}", payment.GetResult(log, handler))
		})
	})

	return router
}

func (s *Server) Serve() error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("stopping api server")
	return s.httpServer.Shutdown(ctx)
}
