// Package server exposes diagrams to browser renderers over HTTP and
// WebSocket.
//
// Stateless endpoints validate editor text and lay out a document in one
// request. The /ws endpoint opens an interactive session: the session owns a
// [diagram.View], applies every inbound event to it from a single goroutine,
// and answers with the new scene followed by any viewport requests.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jsondiagram/pkg/layout"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Config holds server configuration.
type Config struct {
	Addr            string
	AllowAllOrigins bool // allow all CORS origins (dev mode)

	// Defaults for new diagrams.
	Direction   layout.Direction
	Density     layout.Density
	SearchDelay time.Duration

	Engine layout.Engine // nil uses a GraphvizEngine
	Logger *log.Logger
}

// Server serves the rendering boundary.
type Server struct {
	cfg      Config
	logger   *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader
	sessions atomic.Int64
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Engine == nil {
		cfg.Engine = layout.NewGraphvizEngine()
	}
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	if cfg.AllowAllOrigins {
		s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/validate", s.handleValidate)
		r.Post("/layout", s.handleLayout)
	})
	r.Get("/ws", s.handleWebSocket)

	return r
}

// requestLogger logs each request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the number of open WebSocket sessions.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.router,
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening", "addr", "http://"+ln.Addr().String())

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server", "sessions", s.Sessions())
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
