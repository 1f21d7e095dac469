package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/metrics"
)

// Controller is the part of the daemon the admin server drives.
type Controller interface {
	Status() Status
	RunAsync() bool
	Registry() *prom.Registry
}

// AdminServer serves health, status, manual run and metrics endpoints.
type AdminServer struct {
	Addr     string
	ctrl     Controller
	router   *chi.Mux
	server   *http.Server
	listener net.Listener
}

// Response is the envelope for JSON admin responses.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewAdminServer creates an admin server bound to addr once started.
func NewAdminServer(addr string, ctrl Controller) *AdminServer {
	s := &AdminServer{
		Addr:   addr,
		ctrl:   ctrl,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *AdminServer) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/status", s.handleStatus)
	s.router.Post("/run", s.handleRun)
	s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.ctrl.Registry()))
}

// Handler exposes the router.
func (s *AdminServer) Handler() http.Handler { return s.router }

// Start binds the listener and serves in the background. Bind errors are
// returned directly.
func (s *AdminServer) Start() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nerrors.Wrap(err, nerrors.CategoryDaemon, nerrors.SeverityFatal, "failed to bind admin server").
			WithContext("addr", s.Addr)
	}
	s.listener = ln
	s.Addr = ln.Addr().String()

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Admin server stopped", logfields.Error(err))
		}
	}()
	slog.Info("Admin server listening", slog.String("addr", s.Addr))
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *AdminServer) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *AdminServer) writeJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *AdminServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *AdminServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: s.ctrl.Status()})
}

func (s *AdminServer) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.ctrl.RunAsync() {
		s.writeJSON(w, http.StatusConflict, Response{Error: ErrRunInProgress.Message})
		return
	}
	slog.Info("Manual run triggered", slog.String("request_id", middleware.GetReqID(r.Context())))
	s.writeJSON(w, http.StatusAccepted, Response{Success: true, Data: map[string]string{"status": "started"}})
}
