package apimodels

type AskRequest struct {
	// Question is the natural language question to answer
	Question string `json:"question" validate:"required"`

	// Optional study to restrict the generated SQL to
	StudyID string `json:"study_id,omitempty"`

	// Echo the generated SQL in the response
	IncludeSQL bool `json:"include_sql"`
}

type ReportRequest struct {
	StudyID    string `json:"study_id" validate:"required"`
	SiteID     string `json:"site_id" validate:"required"`
	ReportType string `json:"report_type,omitempty"`
}

// ActionItemFilter holds the query parameters of the action item listing.
type ActionItemFilter struct {
	StudyID  string `json:"study_id"`
	Priority string `json:"priority"`
	Limit    int    `json:"-" validate:"min=1,max=100"`
}
