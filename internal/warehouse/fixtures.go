package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// filterColumns are the columns whose literal equality predicates the
// fixtures honour.
var filterColumns = []string{"study_id", "site_id", "priority"}

var (
	topRe   = regexp.MustCompile(`(?i)\bselect\s+top\s+(\d+)`)
	limitRe = regexp.MustCompile(`(?i)\blimit\s+(\d+)`)
)

// Fixtures answers queries from a handful of canned gold layer tables. The
// table is chosen by substring match on the SQL text; literal equality
// filters on study_id, site_id and priority and TOP/LIMIT clauses are then
// applied to it.
type Fixtures struct{}

func NewFixtures() *Fixtures {
	return &Fixtures{}
}

func (f *Fixtures) Dialect() Dialect {
	return DialectSQLServer
}

func (f *Fixtures) Execute(_ context.Context, query string) (*Table, error) {
	source, name := pickFixture(query)
	slog.Debug("Serving fixture table", "fixture", name)

	table := &Table{Columns: source.Columns, Rows: make([]Row, 0, len(source.Rows))}
	filters := literalFilters(query)
	for _, row := range source.Rows {
		if !matchesAll(row, filters) {
			continue
		}
		table.Rows = append(table.Rows, copyRow(row))
	}

	if n, ok := rowLimit(query); ok {
		table = table.Head(n)
	}
	return table, nil
}

func pickFixture(query string) (*Table, string) {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "vw_action_items"):
		return actionItemFixture, "action_items"
	case strings.Contains(q, "agg_site_performance"):
		return sitePerformanceFixture, "site_performance"
	case strings.Contains(q, "fact_subject_metrics") && strings.Contains(q, "group by"):
		return sitePerformanceFixture, "site_performance"
	case strings.Contains(q, "fact_subject_metrics") && strings.Contains(q, "count("):
		return studySummaryFixture, "study_summary"
	case strings.Contains(q, "fact_subject_metrics"):
		return subjectMetricsFixture, "subject_metrics"
	case strings.Contains(q, "site"):
		return sitePerformanceFixture, "site_performance"
	default:
		return noDataFixture, "no_data"
	}
}

func literalFilters(query string) map[string]string {
	filters := map[string]string{}
	for _, col := range filterColumns {
		re := regexp.MustCompile(`(?i)\b` + col + `\s*=\s*'([^']*)'`)
		if m := re.FindStringSubmatch(query); m != nil {
			filters[col] = m[1]
		}
	}
	return filters
}

// matchesAll ignores filters on columns the row does not have.
func matchesAll(row Row, filters map[string]string) bool {
	for col, want := range filters {
		v, ok := row[col]
		if !ok {
			continue
		}
		s, _ := v.(string)
		if !strings.EqualFold(s, want) {
			return false
		}
	}
	return true
}

func rowLimit(query string) (int, bool) {
	for _, re := range []*regexp.Regexp{topRe, limitRe} {
		if m := re.FindStringSubmatch(query); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

var sitePerformanceFixture = &Table{
	Columns: []string{"study_id", "site_id", "region", "country", "total_subjects", "clean_subjects", "avg_data_quality_index", "total_open_queries"},
	Rows: []Row{
		{"study_id": "STUDY001", "site_id": "SITE-001", "region": "US", "country": "USA", "total_subjects": int64(35), "clean_subjects": int64(28), "avg_data_quality_index": 88.5, "total_open_queries": int64(3)},
		{"study_id": "STUDY001", "site_id": "SITE-002", "region": "EU", "country": "Germany", "total_subjects": int64(28), "clean_subjects": int64(12), "avg_data_quality_index": 45.2, "total_open_queries": int64(34)},
		{"study_id": "STUDY001", "site_id": "SITE-003", "region": "EU", "country": "France", "total_subjects": int64(31), "clean_subjects": int64(18), "avg_data_quality_index": 62.8, "total_open_queries": int64(18)},
		{"study_id": "STUDY001", "site_id": "SITE-004", "region": "ASIA", "country": "Japan", "total_subjects": int64(22), "clean_subjects": int64(14), "avg_data_quality_index": 58.4, "total_open_queries": int64(19)},
		{"study_id": "STUDY001", "site_id": "SITE-005", "region": "US", "country": "Canada", "total_subjects": int64(26), "clean_subjects": int64(22), "avg_data_quality_index": 82.1, "total_open_queries": int64(8)},
	},
}

var subjectMetricsFixture = func() *Table {
	dqi := []int64{92, 88, 75, 68, 45, 82, 91, 55, 78, 85}
	clean := []int64{1, 1, 0, 0, 0, 1, 1, 0, 0, 1}
	queries := []int64{0, 1, 5, 8, 15, 2, 0, 12, 4, 1}
	missing := []int64{0, 0, 2, 3, 5, 1, 0, 4, 1, 0}

	t := &Table{Columns: []string{"study_id", "site_id", "subject_id", "data_quality_index", "is_clean_patient", "total_queries", "missing_visits"}}
	for i := range dqi {
		t.Rows = append(t.Rows, Row{
			"study_id":           "STUDY001",
			"site_id":            "SITE-001",
			"subject_id":         fmt.Sprintf("SUB-%04d", i+1),
			"data_quality_index": dqi[i],
			"is_clean_patient":   clean[i],
			"total_queries":      queries[i],
			"missing_visits":     missing[i],
		})
	}
	return t
}()

var studySummaryFixture = &Table{
	Columns: []string{"total_subjects", "avg_dqi", "clean_subjects", "total_queries", "safety_queries", "missing_visits", "uncoded_terms", "critical_signatures", "total_sites", "total_regions"},
	Rows: []Row{
		{"total_subjects": int64(142), "avg_dqi": 67.4, "clean_subjects": int64(94), "total_queries": int64(82), "safety_queries": int64(6), "missing_visits": int64(37), "uncoded_terms": int64(11), "critical_signatures": int64(4), "total_sites": int64(5), "total_regions": int64(3)},
	},
}

var actionItemFixture = &Table{
	Columns: []string{"study_id", "site_id", "subject_id", "priority", "action_type", "responsible_party", "description"},
	Rows: []Row{
		{"study_id": "STUDY001", "site_id": "SITE-002", "subject_id": "SUB-0005", "priority": "CRITICAL", "action_type": "SAFETY_QUERY", "responsible_party": "Safety", "description": "Unresolved SAE reconciliation query open for 60 days"},
		{"study_id": "STUDY001", "site_id": "SITE-002", "subject_id": "SUB-0008", "priority": "CRITICAL", "action_type": "OVERDUE_SIGNATURE", "responsible_party": "Investigator", "description": "CRFs awaiting PI signature for more than 90 days"},
		{"study_id": "STUDY001", "site_id": "SITE-004", "subject_id": "SUB-0012", "priority": "HIGH", "action_type": "MISSING_VISIT", "responsible_party": "Site", "description": "Week 12 visit not entered"},
		{"study_id": "STUDY001", "site_id": "SITE-003", "subject_id": "SUB-0021", "priority": "HIGH", "action_type": "OPEN_QUERY", "responsible_party": "DM", "description": "Lab range query unanswered"},
		{"study_id": "STUDY001", "site_id": "SITE-004", "subject_id": "SUB-0017", "priority": "HIGH", "action_type": "SDV_PENDING", "responsible_party": "CRA", "description": "Source data verification outstanding for baseline visit"},
		{"study_id": "STUDY001", "site_id": "SITE-003", "subject_id": "SUB-0024", "priority": "MEDIUM", "action_type": "UNCODED_TERM", "responsible_party": "DM", "description": "Adverse event term awaiting MedDRA coding"},
		{"study_id": "STUDY001", "site_id": "SITE-005", "subject_id": "SUB-0031", "priority": "MEDIUM", "action_type": "OPEN_QUERY", "responsible_party": "Site", "description": "Concomitant medication start date query"},
		{"study_id": "STUDY001", "site_id": "SITE-001", "subject_id": "SUB-0003", "priority": "LOW", "action_type": "MISSING_PAGE", "responsible_party": "Site", "description": "Optional questionnaire page not entered"},
	},
}

var noDataFixture = &Table{
	Columns: []string{"result"},
	Rows:    []Row{{"result": "No data available for this query"}},
}
