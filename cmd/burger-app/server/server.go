// Package server provides an importable HTTP server for the burger builder
// application the scenarios drive. It serves the single-page application and,
// when fixtures are configured, a canned backend behind the API base. This
// allows E2E tests to programmatically start/stop the application without
// running main().
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pjscruggs/slogcp/slogcphttp"

	"github.com/thesyncim/burger-e2e/pkg/fixture"
)

// Config holds server configuration options.
type Config struct {
	Addr         string        // Listen address (e.g., ":4000" or ":0" for random port)
	ReadTimeout  time.Duration // HTTP read timeout
	WriteTimeout time.Duration // HTTP write timeout

	// APIBase is where the application sends its API calls: a path such as
	// "/api" for the same origin, or an absolute URL.
	APIBase string

	// Fixtures, when set, backs the same-origin API with canned payloads.
	// Without it every API route answers 404 and only route mocks can serve
	// the application.
	Fixtures *fixture.Store

	Logger *slog.Logger
}

// DefaultConfig returns a configuration suitable for testing.
// Uses ":0" to bind to a random available port.
func DefaultConfig() Config {
	return Config{
		Addr:         ":0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		APIBase:      "/api",
	}
}

// Server is an importable HTTP server for the burger builder application.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	log        *slog.Logger
	mu         sync.Mutex
	running    bool
}

// NewServer creates a new server with the given configuration.
// The server is not started until Start() is called.
func NewServer(cfg Config) (*Server, error) {
	if cfg.APIBase == "" {
		return nil, errors.New("api base is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	page, err := template.New("app").Parse(appHTML)
	if err != nil {
		return nil, fmt.Errorf("parse app template: %w", err)
	}

	r := chi.NewRouter()
	r.Use(slogcphttp.Middleware(slogcphttp.WithLogger(logger)))
	r.Use(slogcphttp.InjectTraceContextMiddleware())

	var b *backend
	if cfg.Fixtures != nil {
		if b, err = newBackend(cfg.Fixtures); err != nil {
			return nil, err
		}
	}

	// An absolute API base points at another origin the server does not own.
	api := strings.TrimRight(cfg.APIBase, "/")
	if strings.HasPrefix(api, "/") {
		r.Route(api, func(r chi.Router) {
			if b == nil {
				r.NotFound(func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, http.StatusNotFound, failure("no backend configured"))
				})
				return
			}
			b.Routes(r)
		})
	}

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, appData{APIBase: api}); err != nil {
			logger.ErrorContext(r.Context(), "render app", "error", err)
		}
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		log:        logger,
	}, nil
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped", "error", err)
		}
	}()

	s.log.Info("burger app listening", "addr", s.addr)
	return s.addr, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
// Returns empty string if server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL returns the origin of the running server, with loopback substituted
// for an unspecified listen host.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
