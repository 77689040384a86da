package analytics

import (
	"fmt"
	"sort"

	"github.com/finsight/backend/internal/model"
)

// Granularity selects the calendar bucket for trend aggregation.
type Granularity string

const (
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// TrendPoint aggregates spending for one calendar bucket.
type TrendPoint struct {
	TotalSpent       float64 `json:"total_spent"`
	TransactionCount int     `json:"transaction_count"`
	AvgAmount        float64 `json:"avg_amount"`
}

// TrendReport is the temporal view of expense spending: one point per
// calendar bucket present in the data, plus an overall direction computed
// from the most recent buckets against the earliest ones.
type TrendReport struct {
	TrendData       map[string]TrendPoint `json:"trend_data"`
	TrendDirection  string                `json:"trend_direction"`
	TrendPercentage float64               `json:"trend_percentage"`
}

// AnalyzeTrends buckets expense transactions by the given granularity and
// derives the trend direction by comparing the mean of the last three
// buckets against the mean of the first three. With fewer than two buckets
// the trend is stable at 0%. For 4 or 5 buckets the two windows overlap;
// that comparison is kept as-is so results line up with the historical
// behavior of this computation.
func AnalyzeTrends(transactions []*model.Transaction, granularity Granularity) TrendReport {
	type bucketAccum struct {
		total float64
		count int
	}
	buckets := make(map[string]*bucketAccum)

	for _, t := range transactions {
		if t.Type != model.TypeExpense {
			continue
		}
		key := periodKey(t, granularity)
		acc, ok := buckets[key]
		if !ok {
			acc = &bucketAccum{}
			buckets[key] = acc
		}
		acc.total += t.Amount
		acc.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	trendData := make(map[string]TrendPoint, len(buckets))
	totals := make([]float64, 0, len(keys))
	for _, k := range keys {
		acc := buckets[k]
		trendData[k] = TrendPoint{
			TotalSpent:       acc.total,
			TransactionCount: acc.count,
			AvgAmount:        acc.total / float64(acc.count),
		}
		totals = append(totals, acc.total)
	}

	direction, percentage := trendDirection(totals)
	return TrendReport{
		TrendData:       trendData,
		TrendDirection:  direction,
		TrendPercentage: percentage,
	}
}

// trendDirection compares the mean of the last three bucket totals against
// the mean of the first three. totals must be in chronological order.
func trendDirection(totals []float64) (string, float64) {
	if len(totals) < 2 {
		return TrendStable, 0
	}

	recent := tailMean(totals, 3)
	older := headMean(totals, 3)

	direction := TrendDecreasing
	if recent > older {
		direction = TrendIncreasing
	}
	percentage := 0.0
	if older > 0 {
		percentage = (recent - older) / older * 100
		if percentage < 0 {
			percentage = -percentage
		}
	}
	return direction, percentage
}

func headMean(values []float64, n int) float64 {
	if len(values) < n {
		n = len(values)
	}
	var sum float64
	for _, v := range values[:n] {
		sum += v
	}
	return sum / float64(n)
}

func tailMean(values []float64, n int) float64 {
	if len(values) < n {
		n = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// periodKey renders the calendar bucket label for a transaction. Labels
// sort lexically in chronological order within a granularity.
func periodKey(t *model.Transaction, granularity Granularity) string {
	switch granularity {
	case GranularityWeekly:
		year, week := t.Date.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GranularityYearly:
		return t.Date.Format("2006")
	default:
		return t.Date.Format("2006-01")
	}
}
