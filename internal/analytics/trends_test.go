package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/backend/internal/model"
)

func TestAnalyzeTrendsIncreasing(t *testing.T) {
	transactions := []*model.Transaction{
		expense(model.CategoryFood, 100, day(2024, time.January, 10)),
		expense(model.CategoryFood, 200, day(2024, time.February, 10)),
		expense(model.CategoryFood, 300, day(2024, time.March, 10)),
		expense(model.CategoryFood, 400, day(2024, time.April, 10)),
		expense(model.CategoryFood, 500, day(2024, time.May, 10)),
		expense(model.CategoryFood, 600, day(2024, time.June, 10)),
	}

	report := AnalyzeTrends(transactions, GranularityMonthly)
	require.Len(t, report.TrendData, 6)
	assert.Equal(t, TrendIncreasing, report.TrendDirection)
	// recent mean 500 vs older mean 200: +150%
	assert.InDelta(t, 150, report.TrendPercentage, 1e-9)

	january := report.TrendData["2024-01"]
	assert.InDelta(t, 100, january.TotalSpent, 1e-9)
	assert.Equal(t, 1, january.TransactionCount)
	assert.InDelta(t, 100, january.AvgAmount, 1e-9)
}

func TestAnalyzeTrendsDecreasing(t *testing.T) {
	transactions := []*model.Transaction{
		expense(model.CategoryFood, 600, day(2024, time.January, 10)),
		expense(model.CategoryFood, 500, day(2024, time.February, 10)),
		expense(model.CategoryFood, 100, day(2024, time.March, 10)),
		expense(model.CategoryFood, 50, day(2024, time.April, 10)),
		expense(model.CategoryFood, 50, day(2024, time.May, 10)),
		expense(model.CategoryFood, 50, day(2024, time.June, 10)),
	}

	report := AnalyzeTrends(transactions, GranularityMonthly)
	assert.Equal(t, TrendDecreasing, report.TrendDirection)
	assert.Greater(t, report.TrendPercentage, 0.0)
}

func TestAnalyzeTrendsSingleBucketIsStable(t *testing.T) {
	transactions := []*model.Transaction{
		expense(model.CategoryFood, 100, day(2024, time.January, 5)),
		expense(model.CategoryFood, 50, day(2024, time.January, 25)),
	}

	report := AnalyzeTrends(transactions, GranularityMonthly)
	require.Len(t, report.TrendData, 1)
	assert.Equal(t, TrendStable, report.TrendDirection)
	assert.Zero(t, report.TrendPercentage)
}

func TestAnalyzeTrendsGranularityKeys(t *testing.T) {
	transaction := expense(model.CategoryFood, 10, day(2024, time.March, 7))

	weekly := AnalyzeTrends([]*model.Transaction{transaction}, GranularityWeekly)
	assert.Contains(t, weekly.TrendData, "2024-W10")

	yearly := AnalyzeTrends([]*model.Transaction{transaction}, GranularityYearly)
	assert.Contains(t, yearly.TrendData, "2024")

	monthly := AnalyzeTrends([]*model.Transaction{transaction}, GranularityMonthly)
	assert.Contains(t, monthly.TrendData, "2024-03")
}

func TestAnalyzeTrendsIgnoresIncome(t *testing.T) {
	report := AnalyzeTrends([]*model.Transaction{income(1000, day(2024, time.January, 1))}, GranularityMonthly)
	assert.Empty(t, report.TrendData)
	assert.Equal(t, TrendStable, report.TrendDirection)
}
