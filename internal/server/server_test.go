package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctai-labs/clinical-trial-ai/apimodels"
	"github.com/ctai-labs/clinical-trial-ai/internal/analyzer"
	"github.com/ctai-labs/clinical-trial-ai/internal/config"
	"github.com/ctai-labs/clinical-trial-ai/internal/llm/llmtest"
	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

type failingWarehouse struct{}

func (failingWarehouse) Execute(_ context.Context, query string) (*warehouse.Table, error) {
	return nil, &warehouse.DatabaseError{Query: query, Err: errors.New("connection refused")}
}

func (failingWarehouse) Dialect() warehouse.Dialect {
	return warehouse.DialectSQLServer
}

// staticWarehouse returns the same table for every query.
type staticWarehouse struct {
	table *warehouse.Table
}

func (s staticWarehouse) Execute(context.Context, string) (*warehouse.Table, error) {
	return s.table, nil
}

func (s staticWarehouse) Dialect() warehouse.Dialect {
	return warehouse.DialectDuckDB
}

func newTestServer(wh warehouse.Adapter, provider *llmtest.Provider) *Server {
	cfg := config.Config{Server: config.ServerConfig{CORSAllowedOrigins: []string{"*"}}}
	s := New(cfg, analyzer.New(wh, provider), "scripted-model")
	s.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	rec := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp apimodels.HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "Clinical Trial AI API", resp.Service)
	assert.Equal(t, "scripted-model", resp.Model)
	assert.Contains(t, resp.Endpoints, "ask")
}

func TestRequestIDIsReused(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestAskReturnsAnswerAndSQL(t *testing.T) {
	sql := "SELECT TOP 5 site_id, avg_data_quality_index FROM gold.agg_site_performance"
	provider := llmtest.New("```sql\n"+sql+"\n```", "SITE-002 has the lowest DQI.")
	s := newTestServer(warehouse.NewFixtures(), provider)

	rec := do(t, s, http.MethodPost, "/api/ask", `{"question": "Show the top 5 sites by DQI", "include_sql": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp apimodels.AskResponse
	decode(t, rec, &resp)
	assert.Equal(t, "SITE-002 has the lowest DQI.", resp.Answer)
	require.NotNil(t, resp.SQLQuery)
	assert.Equal(t, sql, *resp.SQLQuery)
	assert.Len(t, resp.Data, 5)
	assert.LessOrEqual(t, len(resp.Data), maxAskRows)
	require.NotNil(t, resp.VisualizationHint)
	assert.Equal(t, "table", *resp.VisualizationHint)
}

func TestAskCapsDataRows(t *testing.T) {
	table := &warehouse.Table{Columns: []string{"subject_id"}}
	for i := 0; i < 150; i++ {
		table.Rows = append(table.Rows, warehouse.Row{"subject_id": fmt.Sprintf("SUB-%04d", i+1)})
	}
	provider := llmtest.New("SELECT subject_id FROM gold.fact_subject_metrics LIMIT 150", "150 subjects.")
	s := newTestServer(staticWarehouse{table: table}, provider)

	rec := do(t, s, http.MethodPost, "/api/ask", `{"question": "List every subject"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp apimodels.AskResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Data, maxAskRows)
	assert.Equal(t, "SUB-0001", resp.Data[0]["subject_id"])
	assert.Equal(t, "SUB-0100", resp.Data[maxAskRows-1]["subject_id"])
}

func TestAskOmitsSQLUnlessRequested(t *testing.T) {
	provider := llmtest.New("SELECT * FROM gold.agg_site_performance", "Five sites.")
	s := newTestServer(warehouse.NewFixtures(), provider)

	rec := do(t, s, http.MethodPost, "/api/ask", `{"question": "How many sites are there?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	decode(t, rec, &raw)
	assert.Nil(t, raw["sql_query"])
	assert.Nil(t, raw["visualization_hint"])
	assert.Equal(t, "Five sites.", raw["answer"])
}

func TestAskQueryErrorIsStillOK(t *testing.T) {
	provider := llmtest.New("SELECT broken")
	s := newTestServer(failingWarehouse{}, provider)

	rec := do(t, s, http.MethodPost, "/api/ask", `{"question": "Show the top sites", "include_sql": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	decode(t, rec, &raw)
	assert.Contains(t, raw["answer"], "encountered a query error")
	assert.Equal(t, "SELECT broken", raw["sql_query"])
	assert.Nil(t, raw["data"])
	assert.Nil(t, raw["visualization_hint"])
}

func TestAskValidation(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{"study_id": "STUDY001"}`},
		{"empty question", `{"question": ""}`},
		{"malformed json", `{"question": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/ask", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp apimodels.ErrorResponse
			decode(t, rec, &resp)
			assert.NotEmpty(t, resp.Detail)
		})
	}
}

func TestAskProviderFailure(t *testing.T) {
	provider := llmtest.New()
	provider.Err = errors.New("upstream unavailable")
	s := newTestServer(warehouse.NewFixtures(), provider)

	rec := do(t, s, http.MethodPost, "/api/ask", `{"question": "anything"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apimodels.ErrorResponse
	decode(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.Detail, "AI processing error: "), resp.Detail)
	assert.Contains(t, resp.Detail, "upstream unavailable")
}

func TestGenerateReport(t *testing.T) {
	provider := llmtest.New("## Executive Summary\nAll good.")
	s := newTestServer(warehouse.NewFixtures(), provider)

	rec := do(t, s, http.MethodPost, "/api/generate-report", `{"study_id": "STUDY001", "site_id": "SITE-001"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp apimodels.ReportResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.ReportID)
	assert.Equal(t, "full", resp.ReportType)
	assert.Equal(t, "SITE-001", resp.SiteID)
	assert.Equal(t, 10, resp.SubjectCount)
	assert.Equal(t, "2026-10-19T12:00:00Z", resp.GeneratedAt)
	assert.Equal(t, "## Executive Summary\nAll good.", resp.Report)
	assert.Equal(t, "SITE-001", resp.SiteMetrics["site_id"])
}

func TestGenerateReportRequiresSite(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	rec := do(t, s, http.MethodPost, "/api/generate-report", `{"study_id": "STUDY001"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerateReportWarehouseFailure(t *testing.T) {
	s := newTestServer(failingWarehouse{}, llmtest.New("unused"))

	rec := do(t, s, http.MethodPost, "/api/generate-report", `{"study_id": "STUDY001", "site_id": "SITE-001"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apimodels.ErrorResponse
	decode(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.Detail, "Report generation error: "), resp.Detail)
}

func TestRecommendationsForLowQualitySite(t *testing.T) {
	provider := llmtest.New(`{
		"risk_level": "HIGH",
		"risk_score": 82,
		"summary": "Query backlog and low DQI.",
		"recommendations": [{"priority": "CRITICAL", "action": "On-site visit", "responsible_party": "CRA", "expected_impact": "Resolve backlog", "timeline": "1 week"}],
		"positive_observations": []
	}`)
	s := newTestServer(warehouse.NewFixtures(), provider)

	rec := do(t, s, http.MethodGet, "/api/recommendations/SITE-002", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	prompt := provider.LastPrompt()
	assert.Contains(t, prompt, `"avg_data_quality_index": 45.2`)
	assert.Contains(t, prompt, `"total_open_queries": 34`)

	var resp apimodels.RecommendationResponse
	decode(t, rec, &resp)
	assert.Equal(t, "SITE-002", resp.SiteID)
	assert.Equal(t, "ALL", resp.StudyID)
	assert.Equal(t, "HIGH", resp.AIAnalysis.RiskLevel)
	assert.NotEmpty(t, resp.AIAnalysis.Recommendations)
}

func TestRecommendationsFallbackOnProse(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New("I think this site needs attention."))

	rec := do(t, s, http.MethodGet, "/api/recommendations/SITE-002?study_id=STUDY001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apimodels.RecommendationResponse
	decode(t, rec, &resp)
	assert.Equal(t, "STUDY001", resp.StudyID)
	assert.Equal(t, "MEDIUM", resp.AIAnalysis.RiskLevel)
	assert.Equal(t, 50.0, resp.AIAnalysis.RiskScore)
}

func TestRecommendationsUnknownSite(t *testing.T) {
	provider := llmtest.New("{}")
	s := newTestServer(warehouse.NewFixtures(), provider)

	rec := do(t, s, http.MethodGet, "/api/recommendations/SITE-999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp apimodels.ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "Site SITE-999 not found", resp.Detail)
	assert.Zero(t, provider.Calls())
}

func TestInsightsWithFailingWarehouse(t *testing.T) {
	s := newTestServer(failingWarehouse{}, llmtest.New(`{"overall_status": "AT_RISK", "summary": "Limited data."}`))

	rec := do(t, s, http.MethodGet, "/api/insights", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var raw map[string]interface{}
	decode(t, rec, &raw)
	assert.Equal(t, map[string]interface{}{}, raw["metrics"])
	assert.Equal(t, "ALL", raw["study_id"])
	assert.Equal(t, "AT_RISK", raw["overall_status"])
	assert.NotEmpty(t, raw["timestamp"])
}

func TestInsightsProviderFailure(t *testing.T) {
	provider := llmtest.New()
	provider.Err = errors.New("quota exceeded")
	s := newTestServer(warehouse.NewFixtures(), provider)

	rec := do(t, s, http.MethodGet, "/api/insights?study_id=STUDY001", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apimodels.ErrorResponse
	decode(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp.Detail, "Insights generation error: "), resp.Detail)
}

func TestActionItems(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	rec := do(t, s, http.MethodGet, "/api/action-items?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp apimodels.ActionItemsResponse
	decode(t, rec, &resp)
	assert.Equal(t, 5, resp.TotalItems)
	assert.Len(t, resp.ActionItems, 5)
	assert.Nil(t, resp.Filters.StudyID)
	assert.Nil(t, resp.Filters.Priority)
	assert.Equal(t, "2026-10-19T12:00:00Z", resp.GeneratedAt)
}

func TestActionItemsPriorityFilter(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	rec := do(t, s, http.MethodGet, "/api/action-items?priority=HIGH&study_id=STUDY001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apimodels.ActionItemsResponse
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.TotalItems)
	require.NotNil(t, resp.Filters.Priority)
	assert.Equal(t, "HIGH", *resp.Filters.Priority)
	require.NotNil(t, resp.Filters.StudyID)
	assert.Equal(t, "STUDY001", *resp.Filters.StudyID)
}

func TestActionItemsLimitValidation(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	for _, limit := range []string{"101", "0", "-3", "abc"} {
		t.Run(limit, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/api/action-items?limit="+limit, "")
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}

	rec := do(t, s, http.MethodGet, "/api/action-items?limit=100", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActionItemsWarehouseFailure(t *testing.T) {
	s := newTestServer(failingWarehouse{}, llmtest.New())

	rec := do(t, s, http.MethodGet, "/api/action-items", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apimodels.ErrorResponse
	decode(t, rec, &resp)
	assert.Contains(t, resp.Detail, "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(warehouse.NewFixtures(), llmtest.New())

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	req.Header.Set("Origin", "http://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://dashboard.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
