package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHeatmap_SameDayMerged(t *testing.T) {
	d := day(2024, 3, 5)
	records := []Record{
		rec(CategoryFood, 10, d),
		rec(CategoryTransport, 20, d),
		rec(CategoryOthers, 30.5, d.Add(13*time.Hour)),
	}

	h, err := ComputeHeatmap(records, 2024, 3)
	require.NoError(t, err)

	require.Len(t, h.Days, 1)
	assert.Equal(t, HeatmapDay{Date: "2024-03-05", Value: 60.5, Count: 3}, h.Days[0])
	assert.Equal(t, 1, h.Summary.ActiveDays)
	assert.Equal(t, 60.5, h.Summary.TotalSpent)
	assert.Equal(t, 60.5, h.Summary.AveragePerDay)
	assert.Equal(t, DayValue{Date: "2024-03-05", Value: 60.5}, h.Summary.MaxDay)

	// 2024-03-05 是周二
	require.Len(t, h.Weekdays, 1)
	assert.Equal(t, WeekdayTotal{Weekday: 2, Total: 60.5, Count: 3, Average: 20.17}, h.Weekdays[0])
}

func TestComputeHeatmap_MaxDayTieTakesEarliest(t *testing.T) {
	records := []Record{
		rec(CategoryFood, 50, day(2024, 6, 20)),
		rec(CategoryFood, 50, day(2024, 6, 3)),
		rec(CategoryFood, 10, day(2024, 6, 1)),
	}
	h, err := ComputeHeatmap(records, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, DayValue{Date: "2024-06-03", Value: 50}, h.Summary.MaxDay)
}

func TestComputeHeatmap_FiltersPeriod(t *testing.T) {
	records := []Record{
		rec(CategoryFood, 10, day(2023, 12, 31)),
		rec(CategoryFood, 20, day(2024, 1, 1)),
		rec(CategoryFood, 30, day(2024, 2, 14)),
		rec(CategoryFood, 40, day(2025, 1, 1)),
	}

	year, err := ComputeHeatmap(records, 2024, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, year.Month)
	require.Len(t, year.Days, 2)
	assert.Equal(t, "2024-01-01", year.Days[0].Date)
	assert.Equal(t, "2024-02-14", year.Days[1].Date)
	assert.Equal(t, 50.0, year.Summary.TotalSpent)
	assert.Equal(t, 25.0, year.Summary.AveragePerDay)

	feb, err := ComputeHeatmap(records, 2024, 2)
	require.NoError(t, err)
	require.Len(t, feb.Days, 1)
	assert.Equal(t, 30.0, feb.Summary.TotalSpent)
}

func TestComputeHeatmap_DaysAscendingAndWeekdays(t *testing.T) {
	records := []Record{
		rec(CategoryFood, 15, day(2024, 1, 14)), // 周日
		rec(CategoryFood, 5, day(2024, 1, 7)),   // 周日
		rec(CategoryFood, 9, day(2024, 1, 13)),  // 周六
	}
	h, err := ComputeHeatmap(records, 2024, 1)
	require.NoError(t, err)

	dates := make([]string, 0, len(h.Days))
	for _, d := range h.Days {
		dates = append(dates, d.Date)
	}
	assert.Equal(t, []string{"2024-01-07", "2024-01-13", "2024-01-14"}, dates)

	assert.Equal(t, []WeekdayTotal{
		{Weekday: 0, Total: 20, Count: 2, Average: 10},
		{Weekday: 6, Total: 9, Count: 1, Average: 9},
	}, h.Weekdays)
}

func TestComputeHeatmap_Empty(t *testing.T) {
	h, err := ComputeHeatmap(nil, 2024, 0)
	require.NoError(t, err)

	assert.NotNil(t, h.Days)
	assert.Empty(t, h.Days)
	assert.NotNil(t, h.Weekdays)
	assert.Empty(t, h.Weekdays)
	assert.Equal(t, HeatmapSummary{}, h.Summary)
}

func TestComputeHeatmap_InvalidArguments(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
	}{
		{"月份过大", 2024, 13},
		{"月份为负", 2024, -1},
		{"年份不足四位", 999, 1},
		{"年份超过四位", 10000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeHeatmap(nil, tt.year, tt.month)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}
