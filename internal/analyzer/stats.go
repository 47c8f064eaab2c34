package analyzer

import (
	"math"
	"sort"
	"strconv"

	"github.com/ctai-labs/clinical-trial-ai/internal/prompts"
	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

var describeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Description holds summary statistics for the numeric columns of a table.
// Values[i][j] is statistic describeStats[i] of column Columns[j].
type Description struct {
	Columns []string
	Values  [][]float64
}

// Describe computes count, mean, sample standard deviation, min, quartiles and
// max for every column whose non-null values are all numeric. Quartiles use
// linear interpolation between closest ranks.
func Describe(t *warehouse.Table) *Description {
	d := &Description{Values: make([][]float64, len(describeStats))}

	for _, col := range t.Columns {
		values, ok := numericColumn(t, col)
		if !ok {
			continue
		}
		sort.Float64s(values)

		d.Columns = append(d.Columns, col)
		stats := []float64{
			float64(len(values)),
			mean(values),
			stddev(values),
			values[0],
			quantile(values, 0.25),
			quantile(values, 0.50),
			quantile(values, 0.75),
			values[len(values)-1],
		}
		for i, v := range stats {
			d.Values[i] = append(d.Values[i], v)
		}
	}
	return d
}

// String renders the description with one row per statistic.
func (d *Description) String() string {
	if len(d.Columns) == 0 {
		return "No numeric subject metrics available"
	}

	header := append([]string{""}, d.Columns...)
	rows := make([][]string, len(describeStats))
	for i, stat := range describeStats {
		row := []string{stat}
		for _, v := range d.Values[i] {
			row = append(row, formatStat(v))
		}
		rows[i] = row
	}
	return prompts.RenderTable(header, rows)
}

func numericColumn(t *warehouse.Table, col string) ([]float64, bool) {
	var values []float64
	for _, row := range t.Rows {
		v := row[col]
		if v == nil {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		values = append(values, f)
	}
	return values, len(values) > 0
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation; NaN for fewer than two values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
