package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisualizationHint(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Compare DQI by region", "bar_chart"},
		{"Compare and list all sites", "bar_chart"},
		{"Open queries BY COUNTRY", "bar_chart"},
		{"What is the distribution of risk levels?", "pie_chart"},
		{"Percentage of clean subjects", "pie_chart"},
		{"DQI trend over time", "line_chart"},
		{"List sites with open safety queries", "table"},
		{"Bottom 3 sites", "table"},
		{"How many subjects are enrolled?", ""},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got := visualizationHint(tt.question)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.want, *got)
			}
		})
	}
}
