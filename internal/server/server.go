package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"framemark/internal/api"
	"framemark/internal/config"
	"framemark/internal/logging"
	"framemark/internal/pipeline"
	"framemark/internal/scheduler"
	"framemark/internal/services"
)

// Server exposes the HTTP API: upload, status, result retrieval, and health.
type Server struct {
	bind      string
	logger    *slog.Logger
	gateway   *api.Gateway
	scheduler *scheduler.Scheduler
	executor  *pipeline.Executor
	maxUpload int64

	listener net.Listener
	server   *http.Server
}

// New builds the HTTP server. It does not bind until Start.
func New(cfg *config.Config, gateway *api.Gateway, sched *scheduler.Scheduler, executor *pipeline.Executor, logger *slog.Logger) (*Server, error) {
	if cfg == nil || gateway == nil || sched == nil {
		return nil, fmt.Errorf("server requires config, gateway, and scheduler")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, fmt.Errorf("api bind address is empty")
	}

	srv := &Server{
		bind:      bind,
		logger:    logging.NewComponentLogger(logger, "api-server"),
		gateway:   gateway,
		scheduler: sched,
		executor:  executor,
		maxUpload: int64(cfg.Workflow.MaxUploadMiB) << 20,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload", srv.handleUpload)
	mux.HandleFunc("/api/status/", srv.handleStatus)
	mux.HandleFunc("/api/video/", srv.handleVideo)
	mux.HandleFunc("/api/download/", srv.handleDownload)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/health", srv.handleHealth)

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(mux)

	srv.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start binds the listener and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler exposes the routing stack for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no video file provided")
		return
	}
	defer file.Close()

	jobID, err := s.scheduler.Submit(r.Context(), scheduler.Upload{
		Reader: file,
		Name:   header.Filename,
		Prompt: r.FormValue("prompt"),
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, services.Detail(err))
			return
		}
		s.logger.Error("upload failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to accept upload")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"job_id":  jobID,
		"message": "video processing started",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := pathID(r.URL.Path, "/api/status/")
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	payload, err := s.gateway.Status(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, "/api/video/", false)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, "/api/download/", true)
}

// serveArtifact streams a completed result. Unknown ids and jobs without a
// finished artifact are both reported as not found so callers cannot probe
// which ids exist.
func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, prefix string, attachment bool) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := pathID(r.URL.Path, prefix)
	if !ok {
		s.writeError(w, http.StatusNotFound, "video not found or not ready")
		return
	}
	artifact, err := s.gateway.ArtifactFor(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrNotReady) {
			s.writeError(w, http.StatusNotFound, "video not found or not ready")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.DownloadName))
	}
	http.ServeFile(w, r, artifact.Path)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": s.gateway.List()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	type stageHealth struct {
		Name   string `json:"name"`
		Ready  bool   `json:"ready"`
		Detail string `json:"detail,omitempty"`
	}
	payload := struct {
		Status string        `json:"status"`
		Stages []stageHealth `json:"stages,omitempty"`
	}{Status: "ok"}

	if s.executor != nil {
		for _, health := range s.executor.Health(r.Context()) {
			if !health.Ready {
				payload.Status = "degraded"
			}
			payload.Stages = append(payload.Stages, stageHealth{
				Name:   health.Name,
				Ready:  health.Ready,
				Detail: health.Detail,
			})
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func pathID(path, prefix string) (string, bool) {
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
