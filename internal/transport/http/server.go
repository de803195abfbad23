package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/julienschmidt/httprouter"

	"ghostwriter/internal/app"
	"ghostwriter/internal/config"
	"ghostwriter/internal/transport/ws"
)

// Host is the session the server exposes
type Host interface {
	ws.Host
	Info() (app.RoomInfo, error)
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	host   Host
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, host Host, logger *slog.Logger) *Server {
	s := &Server{
		host:   host,
		config: cfg,
		logger: logger,
	}

	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.middleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// routes configures all HTTP routes
func (s *Server) routes() *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		s.logger.Error("handler panic", "path", r.URL.Path, "panic", i)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}

	mux.Handler(http.MethodGet, "/ws", ws.NewHandler(s.host, s.logger))
	mux.GET("/api/room", s.handleRoom)
	mux.GET("/api/room/qr.png", s.handleQR)
	mux.GET("/healthz", s.handleHealth)

	if s.config.Server.Profile {
		registerProfileHandlers(mux)
	}

	return mux
}

func registerProfileHandlers(mux *httprouter.Router) {
	mux.Handler(http.MethodGet, "/debug/pprof/allocs", pprof.Handler("allocs"))
	mux.Handler(http.MethodGet, "/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handler(http.MethodGet, "/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handler(http.MethodGet, "/debug/pprof/mutex", pprof.Handler("mutex"))
	mux.HandlerFunc(http.MethodGet, "/debug/pprof/profile", pprof.Profile)
	mux.HandlerFunc(http.MethodGet, "/debug/pprof/trace", pprof.Trace)
}

// middleware wraps the handler with request logging
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Serve accepts connections on an existing listener
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("server starting", "addr", l.Addr().String())
	return s.server.Serve(l)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
