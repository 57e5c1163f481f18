package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jaminalder/timetravel-tictactoe/internal/app"
)

// Option configures the HTTP server.
type Option func(*handlers)

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option { return func(h *handlers) { h.log = l } }

// WithHeartbeat sets the keep-alive interval for SSE and WebSocket streams.
func WithHeartbeat(d time.Duration) Option {
	return func(h *handlers) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, opts ...Option) http.Handler {
	h := &handlers{svc: s, tpl: loadTemplates(), log: zerolog.Nop(), heartbeat: 15 * time.Second}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.log))

	r.Get("/", h.index)
	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/board", h.board)
		r.Get("/state", h.state)
		r.Post("/play", h.play())
		r.Post("/jump", h.jump())
		r.Post("/order", h.order())
		r.Post("/reset", h.reset())
		r.Get("/events", h.events)
		r.Get("/ws", h.ws)
	})
	return r
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
