package apimodels

import "github.com/ctai-labs/clinical-trial-ai/internal/warehouse"

type AskResponse struct {
	// Narrative answer to the question
	Answer string `json:"answer"`

	// Result rows, at most 100
	Data []warehouse.Row `json:"data"`

	// Generated SQL, only when requested
	SQLQuery *string `json:"sql_query"`

	// One of bar_chart, pie_chart, line_chart, table
	VisualizationHint *string `json:"visualization_hint"`
}

type ReportResponse struct {
	ReportID     string        `json:"report_id"`
	StudyID      string        `json:"study_id"`
	SiteID       string        `json:"site_id"`
	ReportType   string        `json:"report_type"`
	GeneratedAt  string        `json:"generated_at"`
	Report       string        `json:"report"`
	SiteMetrics  warehouse.Row `json:"site_metrics"`
	SubjectCount int           `json:"subject_count"`
}

type RecommendationResponse struct {
	SiteID      string         `json:"site_id"`
	StudyID     string         `json:"study_id"`
	Metrics     warehouse.Row  `json:"metrics"`
	AIAnalysis  Recommendation `json:"ai_analysis"`
	GeneratedAt string         `json:"generated_at"`
}

type ActionItemsResponse struct {
	TotalItems  int             `json:"total_items"`
	Filters     ActionFilters   `json:"filters"`
	ActionItems []warehouse.Row `json:"action_items"`
	GeneratedAt string          `json:"generated_at"`
}

// ActionFilters echoes the filters; unset ones encode as null.
type ActionFilters struct {
	StudyID  *string `json:"study_id"`
	Priority *string `json:"priority"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Model     string            `json:"model"`
	Endpoints map[string]string `json:"endpoints"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
