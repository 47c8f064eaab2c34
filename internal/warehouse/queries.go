package warehouse

import (
	"fmt"
	"strings"
)

// Fixed gold layer queries used by the report, recommendation, insight and
// action item endpoints. Identifiers are interpolated into the SQL text as-is.

const (
	ReportSubjectLimit = 50
	MaxActionItems     = 100
)

func SiteMetricsQuery(studyID, siteID string) string {
	return fmt.Sprintf(`
        SELECT * FROM gold.agg_site_performance
        WHERE study_id = '%s' AND site_id = '%s'
        `, studyID, siteID)
}

func SubjectMetricsQuery(d Dialect, studyID, siteID string) string {
	body := fmt.Sprintf(`* FROM gold.fact_subject_metrics
        WHERE study_id = '%s' AND site_id = '%s'
        ORDER BY data_quality_index ASC`, studyID, siteID)
	return d.selectLimited(ReportSubjectLimit, body)
}

// SiteRollupQuery aggregates subject metrics for one site, optionally within
// one study.
func SiteRollupQuery(siteID, studyID string) string {
	where := fmt.Sprintf("WHERE site_id = '%s'", siteID)
	if studyID != "" {
		where += fmt.Sprintf(" AND study_id = '%s'", studyID)
	}

	return fmt.Sprintf(`
        SELECT
            study_id, site_id, region, country,
            COUNT(DISTINCT subject_id) as total_subjects,
            AVG(data_quality_index) as avg_dqi,
            SUM(is_clean_patient) as clean_subjects,
            SUM(total_queries) as open_queries,
            SUM(safety_queries) as safety_queries,
            SUM(missing_visits) as missing_visits,
            SUM(crfs_overdue_90) as critical_signatures
        FROM gold.fact_subject_metrics
        %s
        GROUP BY study_id, site_id, region, country
        `, where)
}

// AggregateMetricsQuery summarizes data quality across all subjects.
func AggregateMetricsQuery(studyID string) string {
	where := ""
	if studyID != "" {
		where = fmt.Sprintf("WHERE study_id = '%s'", studyID)
	}

	return fmt.Sprintf(`
        SELECT
            COUNT(DISTINCT subject_id) as total_subjects,
            AVG(data_quality_index) as avg_dqi,
            SUM(is_clean_patient) as clean_subjects,
            SUM(total_queries) as total_queries,
            SUM(safety_queries) as safety_queries,
            SUM(missing_visits) as missing_visits,
            SUM(uncoded_terms) as uncoded_terms,
            SUM(crfs_overdue_90) as critical_signatures,
            COUNT(DISTINCT site_id) as total_sites,
            COUNT(DISTINCT region) as total_regions
        FROM gold.fact_subject_metrics
        %s
        `, where)
}

// ActionItemsQuery lists open action items, most urgent first.
func ActionItemsQuery(d Dialect, studyID, priority string, limit int) string {
	var clauses []string
	if studyID != "" {
		clauses = append(clauses, fmt.Sprintf("study_id = '%s'", studyID))
	}
	if priority != "" {
		clauses = append(clauses, fmt.Sprintf("priority = '%s'", priority))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	body := fmt.Sprintf(`* FROM gold.vw_action_items
        %s
        ORDER BY
            CASE priority
                WHEN 'CRITICAL' THEN 1
                WHEN 'HIGH' THEN 2
                WHEN 'MEDIUM' THEN 3
                ELSE 4
            END`, where)
	return d.selectLimited(limit, body)
}
