package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func rec(cat Category, amount float64, date time.Time) Record {
	return Record{UserID: 1, Amount: amount, Category: cat, Date: date}
}

func TestComputeStats_Scenario(t *testing.T) {
	records := []Record{
		rec(CategoryFood, 100, day(2024, 1, 10)),
		rec(CategoryFood, 50, day(2024, 2, 10)),
		rec(CategoryTransport, 20, day(2024, 1, 15)),
	}

	s := ComputeStats(records)

	assert.Equal(t, map[Category]Total{
		CategoryFood:      {Total: 150, Count: 2},
		CategoryTransport: {Total: 20, Count: 1},
	}, s.CategoryTotals)
	assert.Equal(t, map[int]Total{
		1: {Total: 120, Count: 2},
		2: {Total: 50, Count: 1},
	}, s.MonthTotals)
	assert.Equal(t, 170.0, s.Overall.Total)
	assert.Equal(t, 3, s.Overall.Count)
	assert.Equal(t, 56.67, s.Overall.Average)
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil)
	require.NotNil(t, s)
	assert.Empty(t, s.CategoryTotals)
	assert.Empty(t, s.MonthTotals)
	assert.Equal(t, 0.0, s.Overall.Total)
	assert.Equal(t, 0, s.Overall.Count)
	assert.Equal(t, 0.0, s.Overall.Average)
}

func TestComputeStats_MergesSameMonthAcrossYears(t *testing.T) {
	s := ComputeStats([]Record{
		rec(CategoryBills, 30, day(2023, 3, 1)),
		rec(CategoryBills, 70, day(2024, 3, 31)),
	})
	assert.Equal(t, Total{Total: 100, Count: 2}, s.MonthTotals[3])
	assert.Len(t, s.MonthTotals, 1)
}

func TestComputeStats_CategorySumMatchesOverall(t *testing.T) {
	var records []Record
	amounts := []float64{12.5, 3.99, 250, 0.01, 47.3, 19.99, 8.8}
	for i, a := range amounts {
		cat := categoryOrder[i%len(categoryOrder)]
		records = append(records, rec(cat, a, day(2024, time.Month(i%12+1), i+1)))
	}

	s := ComputeStats(records)

	var catSum float64
	var catCount int
	for _, ct := range s.CategoryTotals {
		catSum += ct.Total
		catCount += ct.Count
	}
	assert.InDelta(t, s.Overall.Total, catSum, 1e-9)
	assert.Equal(t, s.Overall.Count, catCount)
	assert.Equal(t, len(amounts), s.Overall.Count)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" food ")
	require.NoError(t, err)
	assert.Equal(t, CategoryFood, c)

	_, err = ParseCategory("Groceries")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.True(t, CategoryHealthcare.Valid())
	assert.False(t, Category("餐饮").Valid())
	assert.Len(t, Categories(), 7)
}
