package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/analytics"
)

func TestBuildAnnualPDF(t *testing.T) {
	records := []analytics.Record{
		{Amount: 100, Category: analytics.CategoryFood, Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{Amount: 50, Category: analytics.CategoryFood, Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{Amount: 20, Category: analytics.CategoryTransport, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	heatmap, err := analytics.ComputeHeatmap(records, 2024, 0)
	require.NoError(t, err)
	forecast, err := analytics.ComputeForecast(records, 3)
	require.NoError(t, err)

	out, err := BuildAnnualPDF(Data{
		Year:        2024,
		Owner:       "alice",
		GeneratedAt: time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC),
		Stats:       analytics.ComputeStats(records),
		Heatmap:     heatmap,
		Forecast:    forecast,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 1000)
}

func TestBuildAnnualPDF_EmptyYear(t *testing.T) {
	out, err := BuildAnnualPDF(Data{Year: 2023, Stats: analytics.ComputeStats(nil)})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestBuildAnnualPDF_RequiresStats(t *testing.T) {
	_, err := BuildAnnualPDF(Data{Year: 2024})
	assert.Error(t, err)
}
