// Package server exposes the conversion pipeline over HTTP.
//
// The API is artifact-oriented: clients upload an image and receive a
// finished file back. Two conversion endpoints cover the supported
// artifacts, plus small read-only endpoints for the palette and health
// checks:
//
//	POST /convert/png   multipart upload, returns the mosaic preview PNG
//	POST /convert/pdf   multipart upload, returns the build plan PDF
//	                    (or a zip with the parts manifest when
//	                    include_csv is set)
//	GET  /palette       the brick color catalog as JSON
//	GET  /healthz       liveness probe
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mhuisman/brickmosaic/pkg/pipeline"
)

// Config holds server-level request limits.
type Config struct {
	// MaxUploadBytes caps the request body size. Zero selects the
	// 20 MB default.
	MaxUploadBytes int64
}

const defaultMaxUploadBytes = 20 << 20

// server routes HTTP requests to the conversion pipeline.
type server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
}

// New builds the HTTP handler for the conversion API.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	s := &server{runner: runner, logger: logger, cfg: cfg}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/palette", s.handlePalette)
	r.Post("/convert/png", s.handleConvertPNG)
	r.Post("/convert/pdf", s.handleConvertPDF)

	return r
}

// requestLogger tags each request with an ID and logs its outcome.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"id", reqID[:8], "method", r.Method, "path", r.URL.Path,
			"status", ww.status, "took", time.Since(start).Round(time.Millisecond))
	})
}

// corsMiddleware allows browser clients on any origin; the API serves
// only derived artifacts, never credentials.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter records the response status for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
