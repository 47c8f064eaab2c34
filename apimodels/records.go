package apimodels

// Recommendation is the structured risk assessment the model returns for a
// site.
type Recommendation struct {
	RiskLevel            string       `json:"risk_level"`
	RiskScore            float64      `json:"risk_score"`
	Summary              string       `json:"summary"`
	Recommendations      []SiteAction `json:"recommendations"`
	PositiveObservations []string     `json:"positive_observations"`
}

type SiteAction struct {
	Priority         string `json:"priority"`
	Action           string `json:"action"`
	ResponsibleParty string `json:"responsible_party"`
	ExpectedImpact   string `json:"expected_impact"`
	Timeline         string `json:"timeline"`
}

// Insight is the aggregate data quality assessment. Metrics, Timestamp and
// StudyID are filled in by the server, not the model.
type Insight struct {
	OverallStatus       string              `json:"overall_status"`
	Summary             string              `json:"summary"`
	KeyFindings         []string            `json:"key_findings"`
	RiskAreas           []RiskArea          `json:"risk_areas"`
	Recommendations     []string            `json:"recommendations"`
	SubmissionReadiness SubmissionReadiness `json:"submission_readiness"`

	Metrics   map[string]interface{} `json:"metrics"`
	Timestamp string                 `json:"timestamp"`
	StudyID   string                 `json:"study_id"`
}

type RiskArea struct {
	Area        string `json:"area"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type SubmissionReadiness struct {
	Status            string   `json:"status"`
	Blockers          []string `json:"blockers"`
	EstimatedTimeline string   `json:"estimated_timeline"`
}
