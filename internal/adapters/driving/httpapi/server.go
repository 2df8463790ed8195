package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/custodia-labs/educhat/internal/logger"
)

// Default server limits.
const (
	DefaultAddr           = ":8000"
	DefaultMaxUploadBytes = 32 << 20
	shutdownTimeout       = 10 * time.Second
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Addr is the listen address (default: :8000).
	Addr string

	// RateLimit is the sustained requests per second per client.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the token bucket size per client.
	RateBurst int

	// MaxUploadBytes caps the request body of /upload-document (default: 32 MiB).
	MaxUploadBytes int64
}

// Server is the HTTP API for the tutor.
type Server struct {
	ports   *Ports
	cfg     Config
	handler http.Handler
}

// NewServer creates a server with its routes and middleware in place.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingTutorService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{ports: ports, cfg: cfg}
	s.handler = s.middleware(s.routes())
	return s, nil
}

// routes registers every endpoint on a new router.
func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/upload-document", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/subjects/{subject}/documents", s.handleSubjectDocuments).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// middleware wraps the router in the negroni chain.
func (s *Server) middleware(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	recovery := negroni.NewRecovery()
	recovery.Logger = recoveryLogger{}
	recovery.PrintStack = false
	n.Use(recovery)
	n.Use(negroni.HandlerFunc(logRequests))
	n.Use(negroni.HandlerFunc(allowCORS))
	if s.cfg.RateLimit > 0 {
		n.Use(newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst))
	}

	n.UseHandler(r)
	return n
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("Listening on %s", ln.Addr())
	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
