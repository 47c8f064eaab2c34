package analyzer

import "github.com/ctai-labs/clinical-trial-ai/apimodels"

// DefaultRecommendation is returned when the model's recommendation cannot be
// decoded.
func DefaultRecommendation() apimodels.Recommendation {
	return apimodels.Recommendation{
		RiskLevel: "MEDIUM",
		RiskScore: 50,
		Summary:   "Unable to fully analyze. Manual review recommended.",
		Recommendations: []apimodels.SiteAction{
			{
				Priority:         "HIGH",
				Action:           "Review site metrics manually and develop improvement plan",
				ResponsibleParty: "CRA",
				ExpectedImpact:   "Identify specific improvement areas",
				Timeline:         "Within 1 week",
			},
		},
		PositiveObservations: []string{},
	}
}

// DefaultInsight is returned when the model's insight cannot be decoded.
func DefaultInsight() apimodels.Insight {
	return apimodels.Insight{
		OverallStatus:   "UNKNOWN",
		Summary:         "Unable to generate insights. Please check data availability.",
		KeyFindings:     []string{},
		RiskAreas:       []apimodels.RiskArea{},
		Recommendations: []string{"Review data manually"},
		SubmissionReadiness: apimodels.SubmissionReadiness{
			Status:            "UNKNOWN",
			Blockers:          []string{"Data analysis incomplete"},
			EstimatedTimeline: "TBD",
		},
	}
}
