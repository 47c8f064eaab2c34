package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ctai-labs/clinical-trial-ai/apimodels"
	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

// AskResult is the outcome of the full question-to-answer pipeline.
type AskResult struct {
	SQL    string
	Data   *warehouse.Table
	Answer string

	// QueryErr is set when the generated SQL failed to execute. The pipeline
	// still succeeds and Answer explains the failure.
	QueryErr error
}

// Ask turns a question into SQL, runs it and narrates the result.
func (a *Analyzer) Ask(ctx context.Context, question, studyID string) (*AskResult, error) {
	sql, err := a.QuestionToSQL(ctx, question, studyID)
	if err != nil {
		return nil, err
	}

	data, err := a.query(ctx, sql)
	if err != nil {
		slog.Warn("Generated SQL failed to execute", "sql", sql, "error", err)
		return &AskResult{
			SQL:      sql,
			Answer:   fmt.Sprintf("I understood your question but encountered a query error: %v. Try rephrasing your question.", err),
			QueryErr: err,
		}, nil
	}

	answer, err := a.AnswerQuestion(ctx, question, data)
	if err != nil {
		return nil, err
	}

	return &AskResult{SQL: sql, Data: data, Answer: answer}, nil
}

// SiteReport is a generated report together with the data it was built from.
type SiteReport struct {
	Report       string
	SiteMetrics  warehouse.Row
	SubjectCount int
}

// SiteReport loads a site's KPIs and its worst subjects, then drafts the
// monitoring report. The two queries run concurrently.
func (a *Analyzer) SiteReport(ctx context.Context, studyID, siteID string) (*SiteReport, error) {
	var site, subjects *warehouse.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := a.query(gctx, warehouse.SiteMetricsQuery(studyID, siteID))
		site = t
		return err
	})
	g.Go(func() error {
		t, err := a.query(gctx, warehouse.SubjectMetricsQuery(a.warehouse.Dialect(), studyID, siteID))
		subjects = t
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Loading site data failed", "study_id", studyID, "site_id", siteID, "error", err)
		return nil, err
	}

	metrics := site.First()
	report, err := a.GenerateReport(ctx, studyID, siteID, metrics, subjects)
	if err != nil {
		return nil, err
	}

	return &SiteReport{
		Report:       report,
		SiteMetrics:  metrics,
		SubjectCount: subjects.Len(),
	}, nil
}

// SiteRecommendation rolls up a site's subject metrics and asks for a risk
// assessment. It returns ErrSiteNotFound when the site has no rows.
func (a *Analyzer) SiteRecommendation(ctx context.Context, siteID, studyID string) (warehouse.Row, apimodels.Recommendation, error) {
	data, err := a.query(ctx, warehouse.SiteRollupQuery(siteID, studyID))
	if err != nil {
		return nil, apimodels.Recommendation{}, err
	}
	if data.Empty() {
		return nil, apimodels.Recommendation{}, fmt.Errorf("%w: %s", ErrSiteNotFound, siteID)
	}

	metrics := data.First()
	rec, err := a.Recommend(ctx, siteID, metrics)
	if err != nil {
		return nil, apimodels.Recommendation{}, err
	}
	return metrics, rec, nil
}

// ActionItems lists open action items, most urgent first, never returning
// more than filter.Limit rows.
func (a *Analyzer) ActionItems(ctx context.Context, filter apimodels.ActionItemFilter) (*warehouse.Table, error) {
	slog.Info("Listing action items", "study_id", filter.StudyID, "priority", filter.Priority, "limit", filter.Limit)

	q := warehouse.ActionItemsQuery(a.warehouse.Dialect(), filter.StudyID, filter.Priority, filter.Limit)
	data, err := a.query(ctx, q)
	if err != nil {
		return nil, err
	}
	return data.Head(filter.Limit), nil
}
