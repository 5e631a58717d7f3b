// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
)

// multipartOverhead is allowed on top of the image limit for form framing.
const multipartOverhead = 1 << 20

// timeoutSlack is added to the chain budget for upload, validation and the
// heuristic fallback.
const timeoutSlack = 10 * time.Second

// Analyzer is the subset of *detector.Analyzer the server needs.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte, declaredType string) (*detector.Result, error)
	Providers() []string
	HeuristicEnabled() bool
	MaxBytes() int64
	ProviderTimeout() time.Duration
}

// Config holds HTTP server settings.
type Config struct {
	Addr           string
	AllowedOrigins []string      // CORS origins (default: "*")
	RequestTimeout time.Duration // Whole-request timeout; raised to at least the chain budget
}

// Server serves the detection API.
type Server struct {
	analyzer Analyzer
	logger   *zap.Logger
	config   Config
	router   chi.Router
}

// New creates a server and registers its routes.
func New(analyzer Analyzer, logger *zap.Logger, cfg Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if budget := chainBudget(analyzer); budget > 0 && cfg.RequestTimeout < budget {
		cfg.RequestTimeout = budget
	}

	s := &Server{
		analyzer: analyzer,
		logger:   logger,
		config:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(assignRequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/providers", s.handleProviders)
	})

	s.router = r
}

// chainBudget is the longest a full walk of the provider chain can take.
// It is zero when provider attempts are unbounded.
func chainBudget(a Analyzer) time.Duration {
	per := a.ProviderTimeout()
	if per <= 0 {
		return 0
	}
	return time.Duration(len(a.Providers()))*per + timeoutSlack
}

// RequestTimeout returns the effective whole-request timeout.
func (s *Server) RequestTimeout() time.Duration {
	return s.config.RequestTimeout
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// assignRequestID gives requests without an X-Request-Id header a UUID so
// middleware.RequestID adopts it.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			r.Header.Set(middleware.RequestIDHeader, uuid.NewString())
		}
		w.Header().Set(middleware.RequestIDHeader, r.Header.Get(middleware.RequestIDHeader))
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
