// Package server provides the viewer HTTP server: live MJPEG stream, status
// feed, snapshot history and remote control of a whiteboard session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/fingerboard/internal/app"
	"github.com/ayusman/fingerboard/internal/server/api"
	"github.com/ayusman/fingerboard/internal/store"
)

// Config holds the server configuration.
type Config struct {
	// WebDir holds the viewer page and its assets, served at /.
	WebDir string
	Store  *store.Store
	Queue  *app.Queue
	Frames *FrameHub
	Status *StatusHub
}

// Server represents the viewer HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration. Routes are only
// registered for the parts that are configured.
func New(config Config) *Server {
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
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		snapshots := api.NewSnapshotHandler(s.config.Store)
		s.mux.Handle("/api/snapshots", snapshots)
		s.mux.Handle("/api/snapshots/", snapshots)
	}

	if s.config.Queue != nil {
		s.mux.Handle("/api/control", api.NewControlHandler(s.config.Queue))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.Status != nil {
		s.mux.Handle("/api/status", s.config.Status)
	}

	if s.config.WebDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.WebDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
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
	if s.config.Frames != nil {
		response["viewers"] = s.config.Frames.Viewers()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Viewer server listening on http://%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
