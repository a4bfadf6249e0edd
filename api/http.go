// Package api exposes the compliance engine over HTTP for the spec
// generation pipeline. Authentication is handled by the fronting gateway;
// the workspace/user headers here feed audit metadata only.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/assurecode/compliance/compliance"
	"github.com/assurecode/compliance/event"
	"github.com/assurecode/compliance/queue"
	"github.com/assurecode/compliance/storage"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// Server wires the engine to its HTTP surface and observers.
type Server struct {
	engine    *compliance.Engine
	events    *event.Client
	publisher *queue.Publisher // nil disables the spec-update endpoint
	store     *storage.Store   // nil when no broker is configured
	logger    *slog.Logger
}

// NewServer creates a Server. publisher and store may be nil; event
// publication degrades to a no-op when the event client is unconfigured.
func NewServer(engine *compliance.Engine, events *event.Client, publisher *queue.Publisher, store *storage.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, events: events, publisher: publisher, store: store, logger: logger}
}

// RegisterHTTPHandlers registers all compliance HTTP handlers under the given
// prefix. The prefix should be the path segment without a trailing slash
// (e.g. "api/compliance"). Handlers are registered as:
//
//	POST <prefix>/analyze
//	POST <prefix>/coaching
//	POST <prefix>/spec-update
//	GET  <prefix>/catalog
//	GET  <prefix>/healthz
func (s *Server) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	// Normalise: ensure leading slash and trailing slash.
	if prefix == "" || prefix[0] != '/' {
		prefix = "/" + prefix
	}
	if prefix[len(prefix)-1] != '/' {
		prefix = prefix + "/"
	}

	mux.HandleFunc(prefix+"analyze", s.handleAnalyze)
	mux.HandleFunc(prefix+"coaching", s.handleCoaching)
	mux.HandleFunc(prefix+"spec-update", s.handleSpecUpdate)
	mux.HandleFunc(prefix+"catalog", s.handleCatalog)
	mux.HandleFunc(prefix+"healthz", s.handleHealthz)
}

// AnalyzeRequest is the analyze endpoint's input.
type AnalyzeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// handleAnalyze runs the full compliance pipeline and returns the verdict.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	verdict := s.engine.AnalyzeCompliance(r.Context(), req.Title, req.Description)
	observeAnalysis(string(verdict.Status))

	workspaceID := r.Header.Get("X-Workspace-ID")
	userID := r.Header.Get("X-User-ID")
	s.recordAnalysis(r.Context(), workspaceID, userID, req, verdict)

	writeJSON(w, http.StatusOK, verdict)
}

// recordAnalysis fans the verdict out to the audit observers. Neither the
// event API nor the record store may fail the request.
func (s *Server) recordAnalysis(ctx context.Context, workspaceID, userID string, req AnalyzeRequest, verdict *compliance.Verdict) {
	if err := s.events.LogComplianceCheck(ctx, workspaceID, userID, event.ComplianceCheckResult{
		Frameworks:     verdict.AnalyzedFrameworks,
		Status:         string(verdict.Status),
		ViolationCount: len(verdict.Violations),
	}); err != nil {
		s.logger.Warn("Failed to log compliance check event", "error", err)
	}

	if s.store == nil {
		return
	}
	_, err := s.store.CreateRecord(ctx, &storage.Record{
		WorkspaceID:    workspaceID,
		UserID:         userID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         string(verdict.Status),
		Frameworks:     verdict.AnalyzedFrameworks,
		ViolationCount: len(verdict.Violations),
		Blocking:       verdict.Status == compliance.StatusBlockingViolations,
	})
	if err != nil {
		s.logger.Warn("Failed to store analysis record", "error", err)
	}
}

// CoachingRequest is the coaching endpoint's input.
type CoachingRequest struct {
	Violation compliance.Violation `json:"violation"`
}

// CoachingResponse is the coaching endpoint's output.
type CoachingResponse struct {
	Coaching string `json:"coaching"`
}

// handleCoaching expands one violation into guidance text. Coaching is
// best-effort: oracle failures surface as 502 rather than a degraded body.
func (s *Server) handleCoaching(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req CoachingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Violation.Code == "" {
		writeError(w, http.StatusBadRequest, "violation.code is required")
		return
	}

	text, err := s.engine.GenerateCoaching(r.Context(), req.Violation)
	if err != nil {
		s.logger.Warn("Coaching generation failed", "code", req.Violation.Code, "error", err)
		writeError(w, http.StatusBadGateway, "coaching generation unavailable")
		return
	}

	writeJSON(w, http.StatusOK, CoachingResponse{Coaching: text})
}

// SpecUpdateResponse reports where a published spec update landed.
type SpecUpdateResponse struct {
	MessageID string `json:"messageId"`
	Local     bool   `json:"local,omitempty"`
}

// handleSpecUpdate forwards a specification update to the platform bus,
// which triggers a pull request with the updated spec on the consuming side.
func (s *Server) handleSpecUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "spec-update publishing not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var update queue.SpecUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if update.WorkspaceID == "" || update.SpecificationID == "" {
		writeError(w, http.StatusBadRequest, "workspace_id and specification_id are required")
		return
	}

	result, err := s.publisher.PublishSpecUpdate(r.Context(), update)
	if err != nil {
		s.logger.Warn("Spec update publish failed", "error", err)
		writeError(w, http.StatusBadGateway, "spec update publish failed")
		return
	}

	writeJSON(w, http.StatusOK, SpecUpdateResponse{MessageID: result.MessageID, Local: result.Local})
}

// CatalogResponse lists the knowledge-base documents the engine consults.
type CatalogResponse struct {
	Documents []compliance.Document `json:"documents"`
}

// handleCatalog returns the static compliance document catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Documents: compliance.DefaultCatalog().Documents})
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Response is already partially written; nothing useful to do.
		_ = err
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
