// Package api serves heatposter over HTTP.
//
// Endpoints:
//   - GET  /healthz                  - liveness probe
//   - POST /v1/stats                 - statistics of a posted series
//   - POST /v1/poster?format=svg     - poster of a posted series
//   - GET  /v1/files/{name}/poster   - poster of a series file in the data directory
//
// Errors are JSON objects carrying the error code:
//
//	{"error": {"code": "EMPTY_YEARS", "message": "at least one year is required"}, "request_id": "..."}
//
// Precondition failures answer 400, missing data 404 and upstream failures 502.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/heatposter/pkg/httputil"
	"github.com/matzehuels/heatposter/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	dataDir string
	limiter *httputil.Limiter
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithDataDir enables the file endpoint for series files under dir.
func WithDataDir(dir string) Option {
	return func(s *Server) { s.dataDir = dir }
}

// WithRateLimit refuses requests beyond perSecond with 429.
func WithRateLimit(perSecond float64) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.limiter = httputil.NewLimiter(perSecond, int(perSecond)+1)
		}
	}
}

// WithTimeout bounds the time spent on one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// NewServer creates a server. A nil logger uses the default logger.
func NewServer(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger, timeout: time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(s.deadline)

		r.Post("/stats", s.handleStats)
		r.Post("/poster", s.handlePoster)
		if s.dataDir != "" {
			r.Get("/files/{name}/poster", s.handleFilePoster)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	})
	return r
}
