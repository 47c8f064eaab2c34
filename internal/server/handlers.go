package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ctai-labs/clinical-trial-ai/apimodels"
	"github.com/ctai-labs/clinical-trial-ai/internal/analyzer"
	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

const (
	// maxAskRows caps the rows returned by /api/ask
	maxAskRows = 100

	defaultActionItemLimit = 20
	defaultReportType      = "full"
)

var validate = validator.New()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apimodels.HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
		Model:   s.model,
		Endpoints: map[string]string{
			"ask":             "POST /api/ask - Natural language queries",
			"report":          "POST /api/generate-report - Generate CRA report",
			"recommendations": "GET /api/recommendations/{site_id} - Site recommendations",
			"insights":        "GET /api/insights - Data quality insights",
			"action_items":    "GET /api/action-items - Prioritized action items",
		},
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req apimodels.AskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	slog.Info("Handling ask request", "request_id", RequestIDFromContext(r.Context()), "study_id", req.StudyID)
	slog.Debug("Received ask request", "request", req)

	result, err := s.analyzer.Ask(r.Context(), req.Question, req.StudyID)
	if err != nil {
		slog.Error("Ask request failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("AI processing error: %v", err))
		return
	}

	resp := apimodels.AskResponse{Answer: result.Answer}
	if result.QueryErr == nil {
		resp.VisualizationHint = visualizationHint(req.Question)
	}
	if !result.Data.Empty() {
		resp.Data = result.Data.Head(maxAskRows).Records()
	}
	if req.IncludeSQL {
		resp.SQLQuery = &result.SQL
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req apimodels.ReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.ReportType == "" {
		req.ReportType = defaultReportType
	}

	slog.Info("Handling report request", "study_id", req.StudyID, "site_id", req.SiteID, "report_type", req.ReportType)

	report, err := s.analyzer.SiteReport(r.Context(), req.StudyID, req.SiteID)
	if err != nil {
		slog.Error("Report generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Report generation error: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, apimodels.ReportResponse{
		ReportID:     uuid.NewString(),
		StudyID:      req.StudyID,
		SiteID:       req.SiteID,
		ReportType:   req.ReportType,
		GeneratedAt:  s.timestamp(),
		Report:       report.Report,
		SiteMetrics:  report.SiteMetrics,
		SubjectCount: report.SubjectCount,
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "site_id")
	studyID := r.URL.Query().Get("study_id")

	slog.Info("Handling recommendation request", "site_id", siteID, "study_id", studyID)

	metrics, rec, err := s.analyzer.SiteRecommendation(r.Context(), siteID, studyID)
	if errors.Is(err, analyzer.ErrSiteNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Site %s not found", siteID))
		return
	}
	if err != nil {
		slog.Error("Recommendation request failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Recommendation error: %v", err))
		return
	}

	if studyID == "" {
		studyID = "ALL"
	}
	writeJSON(w, http.StatusOK, apimodels.RecommendationResponse{
		SiteID:      siteID,
		StudyID:     studyID,
		Metrics:     metrics,
		AIAnalysis:  rec,
		GeneratedAt: s.timestamp(),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	studyID := r.URL.Query().Get("study_id")

	insight, err := s.analyzer.Insights(r.Context(), studyID)
	if err != nil {
		slog.Error("Insights request failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Insights generation error: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, insight)
}

func (s *Server) handleActionItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := apimodels.ActionItemFilter{
		StudyID:  q.Get("study_id"),
		Priority: q.Get("priority"),
		Limit:    defaultActionItemLimit,
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("limit: %q is not an integer", raw))
			return
		}
		filter.Limit = n
	}
	if err := validate.Struct(filter); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("limit must be between 1 and %d", warehouse.MaxActionItems))
		return
	}

	items, err := s.analyzer.ActionItems(r.Context(), filter)
	if err != nil {
		slog.Error("Action item request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records := items.Records()
	if records == nil {
		records = []warehouse.Row{}
	}
	writeJSON(w, http.StatusOK, apimodels.ActionItemsResponse{
		TotalItems:  len(records),
		Filters:     apimodels.ActionFilters{StudyID: optional(filter.StudyID), Priority: optional(filter.Priority)},
		ActionItems: records,
		GeneratedAt: s.timestamp(),
	})
}

func (s *Server) timestamp() string {
	return s.now().Format(time.RFC3339)
}

// decodeAndValidate writes a 422 and returns false when the body is not valid
// JSON or fails struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request: %v", err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid request: %s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
	return fmt.Sprintf("Invalid request: %v", err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, apimodels.ErrorResponse{Detail: detail})
}
