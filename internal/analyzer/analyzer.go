package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ctai-labs/clinical-trial-ai/apimodels"
	"github.com/ctai-labs/clinical-trial-ai/internal/llm"
	"github.com/ctai-labs/clinical-trial-ai/internal/normalize"
	"github.com/ctai-labs/clinical-trial-ai/internal/prompts"
	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

// NoDataAnswer is returned for empty results without asking the model.
const NoDataAnswer = "No data found matching your query."

// ErrSiteNotFound is returned when a site has no rows in the warehouse.
var ErrSiteNotFound = errors.New("site not found")

// Analyzer composes the warehouse, the prompt templates and the language
// model into the question-to-answer pipeline. It holds no per-request state
// and is safe for concurrent use.
type Analyzer struct {
	warehouse   warehouse.Adapter
	llmProvider llm.Provider
	now         func() time.Time
}

func New(wh warehouse.Adapter, llmProvider llm.Provider) *Analyzer {
	return &Analyzer{
		warehouse:   wh,
		llmProvider: llmProvider,
		now:         time.Now,
	}
}

// QuestionToSQL asks the model to translate a question into SQL for the
// configured warehouse dialect.
func (a *Analyzer) QuestionToSQL(ctx context.Context, question, studyID string) (string, error) {
	slog.Info("Generating SQL", "question", question, "study_id", studyID)

	text, err := a.complete(ctx, prompts.KindNLToSQL, prompts.Params{
		Question: question,
		StudyID:  studyID,
		Dialect:  a.warehouse.Dialect(),
	})
	if err != nil {
		return "", err
	}

	sql := strings.TrimSpace(normalize.StripCodeFence(text))
	slog.Debug("Generated SQL", "sql", sql)
	return sql, nil
}

// AnswerQuestion narrates a query result. Empty results short-circuit to
// NoDataAnswer.
func (a *Analyzer) AnswerQuestion(ctx context.Context, question string, result *warehouse.Table) (string, error) {
	if result.Empty() {
		slog.Info("Query returned no rows, skipping answer generation")
		return NoDataAnswer, nil
	}

	text, err := a.complete(ctx, prompts.KindDataToAnswer, prompts.Params{Question: question, Result: result})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateReport drafts a CRA monitoring report for one site.
func (a *Analyzer) GenerateReport(ctx context.Context, studyID, siteID string, siteMetrics warehouse.Row, subjects *warehouse.Table) (string, error) {
	slog.Info("Generating CRA report", "study_id", studyID, "site_id", siteID, "subjects", subjects.Len())

	summary := "No subject data available"
	if !subjects.Empty() {
		summary = Describe(subjects).String()
	}

	text, err := a.complete(ctx, prompts.KindMetricsToReport, prompts.Params{
		StudyID:        studyID,
		SiteID:         siteID,
		Metrics:        siteMetrics,
		SubjectSummary: summary,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Recommend asks for a structured risk assessment of a site. Unparseable
// replies become DefaultRecommendation.
func (a *Analyzer) Recommend(ctx context.Context, siteID string, metrics warehouse.Row) (apimodels.Recommendation, error) {
	slog.Info("Generating site recommendations", "site_id", siteID)

	text, err := a.complete(ctx, prompts.KindMetricsToRecommendation, prompts.Params{SiteID: siteID, Metrics: metrics})
	if err != nil {
		return apimodels.Recommendation{}, err
	}

	rec, ok := normalize.ParseOrDefault(text, DefaultRecommendation())
	if !ok {
		parseFallbacksTotal.WithLabelValues("recommendation").Inc()
	}
	return rec, nil
}

// Insights assesses data quality across a study, or all studies when studyID
// is empty. A failing aggregate query degrades to empty metrics.
func (a *Analyzer) Insights(ctx context.Context, studyID string) (apimodels.Insight, error) {
	slog.Info("Generating data quality insights", "study_id", studyID)

	metrics := map[string]interface{}{}
	data, err := a.query(ctx, warehouse.AggregateMetricsQuery(studyID))
	if err != nil {
		slog.Warn("Aggregate metrics query failed, continuing without metrics", "error", err)
	} else if !data.Empty() {
		metrics = data.First()
	}

	text, err := a.complete(ctx, prompts.KindAggregateToInsight, prompts.Params{StudyID: studyID, Metrics: metrics})
	if err != nil {
		return apimodels.Insight{}, err
	}

	insight, ok := normalize.ParseOrDefault(text, DefaultInsight())
	if !ok {
		parseFallbacksTotal.WithLabelValues("insight").Inc()
	}

	insight.Metrics = metrics
	insight.Timestamp = a.now().Format(time.RFC3339)
	insight.StudyID = studyID
	if insight.StudyID == "" {
		insight.StudyID = "ALL"
	}
	return insight, nil
}

func (a *Analyzer) complete(ctx context.Context, kind prompts.Kind, params prompts.Params) (string, error) {
	operation := string(kind)
	prompt, err := prompts.Build(kind, params)
	if err != nil {
		return "", err
	}
	slog.Debug("Prompt built", "operation", operation, "prompt", prompt)

	start := time.Now()
	resp, err := a.llmProvider.Complete(ctx, prompt)
	completionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	completionsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
	if err != nil {
		slog.Error("LLM completion failed", "operation", operation, "error", err)
		return "", fmt.Errorf("LLM completion failed: %w", err)
	}

	slog.Debug("LLM completion received", "operation", operation, "tokens", resp.Usage.TotalTokens)
	return resp.Content, nil
}

func (a *Analyzer) query(ctx context.Context, sql string) (*warehouse.Table, error) {
	table, err := a.warehouse.Execute(ctx, sql)
	warehouseQueriesTotal.WithLabelValues(resultLabel(err)).Inc()
	return table, err
}
