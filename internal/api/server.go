// Package api serves the questionnaire and admin HTTP endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/myrtlewealth/blueprint/internal/auth"
	"github.com/myrtlewealth/blueprint/internal/submission"
)

// Deps are the services behind the handlers.
type Deps struct {
	Submissions *submission.Service
	Accounts    *auth.Accounts
	Tokens      *auth.TokenManager
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Options tune the router.
type Options struct {
	AllowedOrigins      []string
	SubmitRatePerMinute int
	SubmitBurst         int
}

type server struct {
	subs     *submission.Service
	accounts *auth.Accounts
	now      func() time.Time
}

// NewRouter wires the middleware stack and routes.
func NewRouter(d Deps, o Options) http.Handler {
	s := &server{subs: d.Submissions, accounts: d.Accounts, now: time.Now}

	origins := o.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		fail(w, http.StatusNotFound, "Route not found")
	})

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/questionnaire", func(r chi.Router) {
		r.With(rateLimit(o.SubmitRatePerMinute, o.SubmitBurst)).Post("/submit", s.submit)
		r.Get("/{id}", s.getQuestionnaire)
		r.Get("/{id}/pdf", s.downloadPDF)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(d.Tokens))
			r.Get("/dashboard", s.dashboard)
			r.Get("/questionnaires", s.listQuestionnaires)
			r.Get("/questionnaires/{id}", s.getQuestionnaire)
		})
	})

	return r
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}
