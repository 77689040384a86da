package analytics

import "github.com/finsight/backend/internal/model"

// Month-position buckets.
const (
	EarlyMonth = "early_month" // day 1-10
	MidMonth   = "mid_month"   // day 11-20
	LateMonth  = "late_month"  // day 21+
)

// Amount-size buckets.
const (
	SizeSmall     = "small"      // < 25
	SizeMedium    = "medium"     // < 100
	SizeLarge     = "large"      // < 500
	SizeVeryLarge = "very_large" // >= 500
)

// SpendingPatterns holds three independent bucketings of expense activity.
// DayOfWeek and MonthPeriod map to summed amounts; TransactionSizes maps to
// transaction counts.
type SpendingPatterns struct {
	DayOfWeek        map[string]float64 `json:"day_of_week"`
	MonthPeriod      map[string]float64 `json:"month_period"`
	TransactionSizes map[string]int     `json:"transaction_sizes"`
}

// AnalyzePatterns buckets expense transactions by weekday, by position
// within the month, and by amount size. Only buckets with activity appear
// in the output maps.
func AnalyzePatterns(transactions []*model.Transaction) SpendingPatterns {
	patterns := SpendingPatterns{
		DayOfWeek:        make(map[string]float64),
		MonthPeriod:      make(map[string]float64),
		TransactionSizes: make(map[string]int),
	}

	for _, t := range transactions {
		if t.Type != model.TypeExpense {
			continue
		}
		patterns.DayOfWeek[t.Date.Weekday().String()] += t.Amount
		patterns.MonthPeriod[monthPeriod(t.Date.Day())] += t.Amount
		patterns.TransactionSizes[amountSize(t.Amount)]++
	}
	return patterns
}

func monthPeriod(day int) string {
	switch {
	case day <= 10:
		return EarlyMonth
	case day <= 20:
		return MidMonth
	default:
		return LateMonth
	}
}

func amountSize(amount float64) string {
	switch {
	case amount < 25:
		return SizeSmall
	case amount < 100:
		return SizeMedium
	case amount < 500:
		return SizeLarge
	default:
		return SizeVeryLarge
	}
}
