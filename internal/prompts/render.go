package prompts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/ctai-labs/clinical-trial-ai/internal/warehouse"
)

// RenderTable lays rows out as an aligned plain-text table.
func RenderTable(header []string, rows [][]string) string {
	var sb strings.Builder
	tw := tablewriter.NewWriter(&sb)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorder(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.AppendBulk(rows)
	tw.Render()
	return sb.String()
}

// RenderResult renders a warehouse result in column order.
func RenderResult(t *warehouse.Table) string {
	rows := make([][]string, 0, t.Len())
	for _, r := range t.Records() {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = FormatValue(r[col])
		}
		rows = append(rows, cells)
	}
	return RenderTable(t.Columns, rows)
}

// FormatValue prints a scalar the way it should appear inside a prompt.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// metricsJSON pretty prints a metrics mapping for embedding in a prompt.
func metricsJSON(metrics map[string]interface{}) string {
	if metrics == nil {
		metrics = map[string]interface{}{}
	}
	b, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		// NaN/Inf and other unencodable values
		return fmt.Sprintf("%v", metrics)
	}
	return string(b)
}
