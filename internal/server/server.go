package server

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/dragsort/internal/engine"
	"github.com/roach88/dragsort/internal/store"
)

// Config configures a Server.
type Config struct {
	// CompletionDelay is passed to every session. Zero means
	// engine.DefaultCompletionDelay.
	CompletionDelay time.Duration

	// SessionIDs names new sessions. Default: UUIDv7.
	SessionIDs engine.SessionIDGenerator

	Logger *slog.Logger
}

// Server serves the catalogue API and websocket sessions from one store.
type Server struct {
	store    *store.Store
	delay    time.Duration
	ids      engine.SessionIDGenerator
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server reading from and recording into st.
func New(st *store.Store, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ids := cfg.SessionIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	delay := cfg.CompletionDelay
	if delay <= 0 {
		delay = engine.DefaultCompletionDelay
	}

	return &Server{
		store:  st,
		delay:  delay,
		ids:    ids,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the routed, request-logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sections", s.handleSections)
	mux.HandleFunc("GET /api/categories/{id}/tasks", s.handleTasks)
	mux.HandleFunc("GET /api/categories/{id}/tasks/{task}", s.handleTask)
	mux.HandleFunc("GET /ws", s.handleSession)
	return s.logRequests(mux)
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
