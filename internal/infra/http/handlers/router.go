package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/nexus-concierge/internal/infra/http/middleware"
)

type RouterOptions struct {
	Concierge      *ConciergeHandler
	Publish        *PublishHandler
	Health         *HealthHandler
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	RequestLogger  func(http.Handler) http.Handler
}

func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if opts.RequestLogger != nil {
		r.Use(opts.RequestLogger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
			MaxAge:         300,
		}))
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}

		r.Post("/concierge", opts.Concierge.Handle)
		// GET só existe para o preflight/CORS
		r.Get("/concierge", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Options("/concierge", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	if opts.Publish != nil {
		r.With(chimw.Timeout(60*time.Second)).Post("/posts/{postId}/publish", opts.Publish.Handle)
	}
	if opts.Health != nil {
		r.Get("/health", opts.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	return r
}
