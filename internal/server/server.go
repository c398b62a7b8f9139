// Package server provides the local HTTP server for drishti: the JSON API, a
// websocket stream of per-frame results and an MJPEG camera preview.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/drishti/internal/server/api"
	"github.com/ayusman/drishti/internal/session"
	"github.com/ayusman/drishti/internal/store"
)

// Controller is the running application as seen by the server.
type Controller interface {
	api.Controller
	Subscribe() (<-chan session.Result, func())
	PreviewJPEG() ([]byte, error)
}

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller Controller
}

// Server represents the HTTP server for the drishti application.
type Server struct {
	config Config
	router *mux.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	if s.config.Controller != nil {
		api.NewControlHandler(s.config.Controller).Register(s.router)
		s.router.Handle("/api/signals", NewSignalsHandler(s.config.Controller)).Methods(http.MethodGet)
		s.router.Handle("/api/stream", NewStreamHandler(s.config.Controller)).Methods(http.MethodGet)
		if ps, ok := s.config.Controller.(api.PluginSource); ok {
			api.NewPluginHandler(ps).Register(s.router)
		}
	}

	if s.config.Store != nil {
		api.NewSessionHandler(s.config.Store).Register(s.router)
	}

	// Registered last so API routes win. Read-only methods keep a wrong-method
	// API request a 405 rather than a static 404.
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.PathPrefix("/").Handler(fs).Methods(http.MethodGet, http.MethodHead)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
