// Package server exposes the analysis service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/docscan/internal/analyze"
	"github.com/sells-group/docscan/internal/identity"
	"github.com/sells-group/docscan/internal/model"
)

// Analyzer is the service behind the routes.
type Analyzer interface {
	Analyze(ctx context.Context, caller identity.User, text string) (*analyze.Result, error)
	History(ctx context.Context, caller identity.User, limit int) ([]model.Submission, error)
}

// Options configures the cross-origin policy.
type Options struct {
	Origins         []string
	AllowAllOrigins bool
}

// Server holds the HTTP handlers.
type Server struct {
	analyzer Analyzer
	verifier identity.Verifier
	opts     Options
}

// New creates a Server.
func New(a Analyzer, v identity.Verifier, opts Options) *Server {
	return &Server{analyzer: a, verifier: v, opts: opts}
}

// Handler builds the router. CORS runs outermost so every response,
// including errors and recovered panics, carries the allow-origin header.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.corsHandler())
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	// Non-preflight OPTIONS requests still get an empty 200.
	r.Options("/analyze-document", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, struct{}{})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/analyze-document", s.handleAnalyze)
		r.Get("/submissions", s.handleSubmissions)
	})
	return r
}

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   s.opts.Origins,
		AllowedMethods:   []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           3600,
	}
	// Credentialed requests cannot be answered with a wildcard, so allow-all
	// echoes the caller's origin instead.
	if s.opts.AllowAllOrigins {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	}
	return cors.Handler(opts)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := analyze.StatusCode(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("server: request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Detail: analyze.Detail(err)})
}
