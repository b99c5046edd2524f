// Package dashboard serves the monitoring API consumed by the claims
// dashboard UI.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pkravets/claimpilot/internal/model"
	"github.com/pkravets/claimpilot/internal/workflow"
)

// Processor runs one claim workflow request; satisfied by the orchestrator.
type Processor interface {
	Process(ctx context.Context, text string) (*model.Decision, error)
}

// Server is the dashboard API server.
type Server struct {
	log       *workflow.StepLog
	processor Processor
	logger    *zap.Logger
	router    *chi.Mux
}

// NewServer wires the dashboard routes.
func NewServer(stepLog *workflow.StepLog, processor Processor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		log:       stepLog,
		processor: processor,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/processing-steps", s.handleProcessingSteps)
	r.Post("/api/start-processing/{claimID}", s.handleStartProcessing)
	r.Post("/api/stop-processing/{claimID}", s.handleStopProcessing)
	r.Post("/api/claims/{claimID}/process", s.handleProcessClaim)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// stepsResponse is the processing-steps payload.
type stepsResponse struct {
	Steps          []model.WorkflowStep `json:"steps"`
	ActiveSessions int                  `json:"active_sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProcessingSteps(w http.ResponseWriter, r *http.Request) {
	steps := s.log.Steps()
	if claimID := r.URL.Query().Get("claim_id"); claimID != "" {
		steps = s.log.ByClaim(claimID)
	}
	if steps == nil {
		steps = []model.WorkflowStep{}
	}

	writeJSON(w, http.StatusOK, stepsResponse{
		Steps:          steps,
		ActiveSessions: s.log.ActiveSessions(),
	})
}

func (s *Server) handleStartProcessing(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimID")
	s.log.StartSession(claimID)
	s.logger.Info("processing session started", zap.String("claim_id", claimID))
	writeJSON(w, http.StatusOK, map[string]string{"claim_id": claimID, "status": "started"})
}

func (s *Server) handleStopProcessing(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimID")
	s.log.StopSession(claimID)
	s.logger.Info("processing session stopped", zap.String("claim_id", claimID))
	writeJSON(w, http.StatusOK, map[string]string{"claim_id": claimID, "status": "stopped"})
}

func (s *Server) handleProcessClaim(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimID")

	decision, err := s.processor.Process(r.Context(), fmt.Sprintf("Process claim with %s", claimID))
	if err != nil {
		if errors.Is(err, workflow.ErrNoClaimReference) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("claim processing failed",
			zap.String("claim_id", claimID),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.logger.Info("claim processed",
		zap.String("claim_id", decision.ClaimID),
		zap.String("outcome", string(decision.Outcome)))
	writeJSON(w, http.StatusOK, decision)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
