// Package server provides the HTTP server for the finger-pointing quiz.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/logging"
	"github.com/ayusman/fingerquiz/internal/quiz"
	"github.com/ayusman/fingerquiz/internal/server/api"
)

// blocked are static paths that must never be served.
var blocked = map[string]bool{
	"/hands.js":         true,
	"/camera_utils.js":  true,
	"/drawing_utils.js": true,
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Game      api.Game
	Board     api.Board
	Frames    *app.Hub
	Events    *app.Hub
	// Total is the number of questions a session has, for score display.
	Total int
	// PublicURL is encoded in the join QR code. When empty the request host is used.
	PublicURL string
	Logger    *zap.SugaredLogger
}

// Server represents the HTTP server of the quiz.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = zap.NewNop().Sugar()
	}
	if config.Total <= 0 {
		config.Total = quiz.DefaultSessionSize
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	logger := s.config.Logger

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/qr", NewQRHandler(s.config.PublicURL))

	if s.config.Game != nil {
		sessions := api.NewSessionHandler(s.config.Game, logger.Named("session"))
		s.mux.Handle("/api/session", sessions)
		s.mux.Handle("/api/session/", sessions)
		s.mux.Handle("/api/camera", api.NewCameraHandler(s.config.Game, logger.Named("camera")))
	}

	if s.config.Board != nil {
		s.mux.Handle("/api/leaderboard", api.NewLeaderboardHandler(s.config.Board, s.config.Total, logger.Named("leaderboard")))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.Events != nil {
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Events, logger.Named("events")))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if blocked[r.URL.Path] {
				http.NotFound(w, r)
				return
			}
			fs.ServeHTTP(w, r)
		}))
	}
}

// ServeHTTP implements the http.Handler interface. Handlers find a logger
// carrying the request method and path in the request context.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := s.config.Logger.With("method", r.Method, "path", r.URL.Path)
	s.mux.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// HTTPServer returns an http.Server for addr serving s.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
