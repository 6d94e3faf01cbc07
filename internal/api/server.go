package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/a11ylab/scorecard/internal/config"
	"github.com/a11ylab/scorecard/internal/mapping"
)

// Server is the HTTP scoring service.
type Server struct {
	router  chi.Router
	log     *slog.Logger
	cfg     config.Config
	mapping atomic.Pointer[mapping.Mapping]
}

// NewServer creates and configures the HTTP server around an initially
// loaded mapping.
func NewServer(m *mapping.Mapping, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		log: log,
		cfg: cfg,
	}
	s.mapping.Store(m)
	s.setupRoutes()
	return s
}

// SwapMapping replaces the mapping used by subsequent score requests.
// In-flight requests keep the table they started with.
func (s *Server) SwapMapping(m *mapping.Mapping) {
	s.mapping.Swap(m)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/score", s.handleScore)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
