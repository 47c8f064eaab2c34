// Package prompts builds the text sent to the language model. Every builder
// is a pure function of its inputs.
package prompts

import (
	"fmt"

	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

// Kind names one of the prompt templates.
type Kind string

const (
	KindNLToSQL                 Kind = "nl_to_sql"
	KindDataToAnswer            Kind = "data_to_answer"
	KindMetricsToReport         Kind = "metrics_to_report"
	KindMetricsToRecommendation Kind = "metrics_to_recommendation"
	KindAggregateToInsight      Kind = "aggregate_to_insight"
)

const (
	// MaxSQLRows is the row cap the model is told to put on generated SQL.
	MaxSQLRows = 100
	// MaxAnswerRows is how many result rows are shown to the model.
	MaxAnswerRows = 20
)

// Params carries the inputs any template may need; each kind reads only the
// fields it uses.
type Params struct {
	Question       string
	StudyID        string
	SiteID         string
	Dialect        warehouse.Dialect
	Result         *warehouse.Table
	Metrics        map[string]interface{}
	SubjectSummary string
}

// Build renders the template of the given kind.
func Build(kind Kind, p Params) (string, error) {
	switch kind {
	case KindNLToSQL:
		return NLToSQL(p.Question, p.StudyID, p.Dialect), nil
	case KindDataToAnswer:
		return DataToAnswer(p.Question, p.Result), nil
	case KindMetricsToReport:
		return MetricsToReport(p.StudyID, p.SiteID, p.Metrics, p.SubjectSummary), nil
	case KindMetricsToRecommendation:
		return MetricsToRecommendation(p.SiteID, p.Metrics), nil
	case KindAggregateToInsight:
		return AggregateToInsight(p.Metrics, p.StudyID), nil
	default:
		return "", fmt.Errorf("unknown prompt kind %q", kind)
	}
}

func NLToSQL(question, studyID string, dialect warehouse.Dialect) string {
	if dialect == "" {
		dialect = warehouse.DialectSQLServer
	}

	studyFilter := "No study filter (query all)"
	if studyID != "" {
		studyFilter = fmt.Sprintf("Filter by study_id = '%s'", studyID)
	}

	return fmt.Sprintf(`
%s

Convert this question to a %s query. Return ONLY the SQL query, no explanations.
The query should be safe and read-only (SELECT only).
Limit results to %d rows maximum.

%s

Question: %s

Important:
- %s
- Use proper %s syntax
- Only use tables/views mentioned in the schema above
- Return just the SQL, no markdown formatting

SQL Query:
`, SchemaContext, dialect, MaxSQLRows, studyFilter, question, dialect.LimitHint(MaxSQLRows), dialect)
}

// DataToAnswer shows the model at most MaxAnswerRows rows of the result.
func DataToAnswer(question string, result *warehouse.Table) string {
	data := RenderResult(result.Head(MaxAnswerRows))
	if extra := result.Len() - MaxAnswerRows; extra > 0 {
		data += fmt.Sprintf("\n... and %d more rows", extra)
	}

	return fmt.Sprintf(`
Based on this clinical trial data:

%s

Question: %s

Provide a clear, concise answer in natural language. Include:
1. Direct answer to the question with specific numbers
2. Key insights or patterns observed
3. Any concerning trends (if applicable)

Keep the response professional and under 200 words.
`, data, question)
}

func MetricsToReport(studyID, siteID string, siteMetrics map[string]interface{}, subjectSummary string) string {
	return fmt.Sprintf(`
%s

Generate a professional CRA (Clinical Research Associate) monitoring report.

Study: %s
Site: %s

Site Metrics:
%s

Subject Summary Statistics:
%s

Create a comprehensive report with these sections:

## EXECUTIVE SUMMARY
(2-3 sentences overview)

## SITE PERFORMANCE METRICS
- Data Quality Index: [value] ([interpretation])
- Clean Subjects: [X] of [Y] ([percentage]%%)
- Open Queries: [count]
- SDV Completion: [percentage]%%

## KEY FINDINGS
(3-5 bullet points of important observations)

## AREAS REQUIRING ATTENTION
(List any concerns with priority level)

## RECOMMENDED ACTIONS
(Numbered list of specific actions with responsible parties)

## NEXT STEPS
(What should happen before next monitoring visit)

Use professional clinical trial terminology. Be specific with numbers.
`, SchemaContext, studyID, siteID, metricsJSON(siteMetrics), subjectSummary)
}

func MetricsToRecommendation(siteID string, metrics map[string]interface{}) string {
	return fmt.Sprintf(`
%s

Analyze these metrics for site %s and provide recommendations:

Metrics:
%s

Provide a JSON response with this exact structure:
{
    "risk_level": "CRITICAL|HIGH|MEDIUM|LOW",
    "risk_score": <number 0-100>,
    "summary": "<one sentence assessment>",
    "recommendations": [
        {
            "priority": "HIGH|MEDIUM|LOW",
            "action": "<specific action to take>",
            "responsible_party": "<CRA|DM|Site|Safety|Investigator>",
            "expected_impact": "<what improvement to expect>",
            "timeline": "<when to complete>"
        }
    ],
    "positive_observations": ["<list of things going well>"]
}

Return ONLY valid JSON, no other text.
`, SchemaContext, siteID, metricsJSON(metrics))
}

func AggregateToInsight(metrics map[string]interface{}, studyID string) string {
	filter := studyID
	if filter == "" {
		filter = "All Studies"
	}

	return fmt.Sprintf(`
%s

Analyze this clinical trial data quality summary and provide insights:

Metrics:
%s

Study Filter: %s

Provide a JSON response with this structure:
{
    "overall_status": "EXCELLENT|GOOD|FAIR|NEEDS_ATTENTION|CRITICAL",
    "summary": "<2-3 sentence executive summary>",
    "key_findings": [
        "<finding 1>",
        "<finding 2>",
        "<finding 3>"
    ],
    "risk_areas": [
        {"area": "<name>", "severity": "HIGH|MEDIUM|LOW", "description": "<details>"}
    ],
    "recommendations": [
        "<actionable recommendation 1>",
        "<actionable recommendation 2>"
    ],
    "submission_readiness": {
        "status": "READY|NEAR_READY|NOT_READY",
        "blockers": ["<list of blocking issues>"],
        "estimated_timeline": "<when could be ready>"
    }
}

Return ONLY valid JSON.
`, SchemaContext, metricsJSON(metrics), filter)
}
