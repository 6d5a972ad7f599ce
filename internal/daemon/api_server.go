package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"condish/internal/api"
	"condish/internal/config"
	"condish/internal/logging"
	"condish/internal/services"
	"condish/internal/workflow"
)

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	manager *workflow.Manager

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(cfg.Paths.APIBind),
		logger:  logging.NewComponentLogger(logger, "api-server"),
		daemon:  d,
		manager: d.manager,
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	srv.server = &http.Server{
		Handler:           requestIDMiddleware(authMiddleware(cfg.Paths.APIToken, mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Collaborator calls run inside requests.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", s.handleStatus)

	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("POST /api/session/reset", s.handleReset)
	mux.HandleFunc("PUT /api/session/mode", s.handleMode)

	mux.HandleFunc("POST /api/rooms", s.handleLoadRooms)
	mux.HandleFunc("POST /api/floor-plan", s.handleFloorPlan)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleRoom)
	mux.HandleFunc("GET /api/layout", s.handleLayout)
	mux.HandleFunc("POST /api/rooms/{id}/references", s.handleAddReference)

	mux.HandleFunc("POST /api/inspection/start", s.handleStart)
	mux.HandleFunc("POST /api/inspection/goto", s.handleGoTo)
	mux.HandleFunc("POST /api/inspection/scan", s.handleScan)
	mux.HandleFunc("DELETE /api/inspection/candidates/{index}", s.handleDismiss)
	mux.HandleFunc("POST /api/inspection/complete", s.handleComplete)
	mux.HandleFunc("POST /api/inspection/skip", s.handleSkip)

	mux.HandleFunc("POST /api/findings/ignore", s.handleIgnore)
	mux.HandleFunc("POST /api/findings/ignored/{index}/restore", s.handleRestore)
	mux.HandleFunc("DELETE /api/findings/{index}", s.handleRemove)

	mux.HandleFunc("PUT /api/deposit", s.handleDeposit)
	mux.HandleFunc("POST /api/lease", s.handleLease)
	mux.HandleFunc("POST /api/quote", s.handleQuote)
	mux.HandleFunc("GET /api/settlement", s.handleSettlement)
	mux.HandleFunc("POST /api/settlement/recalculate", s.handleRecalculate)
	mux.HandleFunc("GET /api/report.xlsx", s.handleReport)
	mux.HandleFunc("GET /api/report.txt", s.handleReportText)
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		s.logger.Info("api server disabled; no bind address configured")
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed",
				logging.Error(err),
				logging.Impact("the CLI cannot reach the daemon"),
			)
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

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	s.mu.Unlock()
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrUnavailable), errors.Is(err, services.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	category := services.Classify(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(logger, "api request failed", "api_request_failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.String("category", string(category)),
			logging.Error(err),
		)
	} else {
		logger.Debug("api request rejected",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Category: string(category)})
}
