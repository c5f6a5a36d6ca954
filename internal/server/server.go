package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/events"
	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/tracking"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	db         *db.DB
	tracker    *tracking.Service
	jwtService *JWTService
	log        *zap.Logger
}

// New creates a new server instance wired to the database and the tracking
// service.
func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := &Server{
		db:         database,
		jwtService: NewJWTService(jwtConfig),
		log:        log,
	}

	s.tracker = tracking.NewService(database, database, database,
		tracking.WithSkillCatalog(database),
		tracking.WithEventSink(events.NewLogSink(log)),
		tracking.WithLogger(log),
		tracking.WithMatchThreshold(cfg.MatchThreshold),
	)

	validator := s.jwtService.AsTokenValidator()
	requireAuth := middleware.RequireAuth(validator)
	optionalAuth := middleware.OptionalAuth(validator)

	mux := http.NewServeMux()

	// Submission is open to external candidates without accounts.
	mux.Handle("POST /applications", optionalAuth(http.HandlerFunc(s.handleCreateApplication)))

	// Everything else requires an authenticated actor for the audit trail.
	mux.Handle("GET /applications", requireAuth(http.HandlerFunc(s.handleListApplications)))
	mux.Handle("GET /applications/{id}", requireAuth(http.HandlerFunc(s.handleGetApplication)))
	mux.Handle("PUT /applications/{id}", requireAuth(http.HandlerFunc(s.handleUpdateApplication)))
	mux.Handle("POST /applications/bulk", requireAuth(http.HandlerFunc(s.handleBulkUpdate)))

	mux.Handle("POST /applications/{id}/rate", requireAuth(http.HandlerFunc(s.handleRate)))
	mux.Handle("POST /applications/{id}/assign", requireAuth(http.HandlerFunc(s.handleAssign)))
	mux.Handle("POST /applications/{id}/reject", requireAuth(http.HandlerFunc(s.handleReject)))
	mux.Handle("POST /applications/{id}/withdraw", requireAuth(http.HandlerFunc(s.handleWithdraw)))
	mux.Handle("POST /applications/{id}/interviews", requireAuth(http.HandlerFunc(s.handleScheduleInterview)))
	mux.Handle("POST /applications/{id}/interviews/feedback", requireAuth(http.HandlerFunc(s.handleInterviewFeedback)))
	mux.Handle("POST /applications/{id}/communications", requireAuth(http.HandlerFunc(s.handleAddCommunication)))
	mux.Handle("POST /applications/{id}/resume", requireAuth(http.HandlerFunc(s.handleAttachResume)))
	mux.Handle("POST /applications/{id}/screening/recompute", requireAuth(http.HandlerFunc(s.handleRecomputeScreening)))

	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.db.Close()
	s.log.Info("server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a tracking error onto the response.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	status, message := mapServiceError(err)
	if status == http.StatusInternalServerError {
		s.log.Error("internal error", zap.Error(err))
	}
	s.errorResponse(w, status, message)
}
