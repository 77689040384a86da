// Package analytics implements the financial analytics engine: category
// aggregation, temporal trends, behavioral patterns, rule-based
// categorization, insight generation and budget optimization. Every function
// here is a pure computation over the transactions it is handed; nothing in
// this package performs I/O or holds state between calls.
package analytics

import (
	"math"

	"github.com/finsight/backend/internal/model"
)

// CategoryStats describes a category's monthly spending behavior. The
// avg/std/min/max fields are computed over per-month totals, not individual
// transaction amounts. Variability is the coefficient of variation
// (std/mean) and is the volatility proxy used by the optimizer.
type CategoryStats struct {
	AvgMonthly       float64 `json:"avg_monthly"`
	StdMonthly       float64 `json:"std_monthly"`
	MinMonthly       float64 `json:"min_monthly"`
	MaxMonthly       float64 `json:"max_monthly"`
	TotalSpent       float64 `json:"total_spent"`
	TransactionCount int     `json:"transaction_count"`
	Variability      float64 `json:"variability"`
}

// AggregateByCategory groups expense transactions by category, partitions
// each category's amounts by calendar month, and derives monthly statistics.
// An empty input yields an empty map. A category observed in a single month
// has StdMonthly 0 and therefore Variability 0.
func AggregateByCategory(transactions []*model.Transaction) map[model.Category]CategoryStats {
	type categoryAccum struct {
		monthTotals map[string]float64
		totalSpent  float64
		count       int
	}

	accums := make(map[model.Category]*categoryAccum)
	for _, t := range transactions {
		if t.Type != model.TypeExpense {
			continue
		}
		acc, ok := accums[t.Category]
		if !ok {
			acc = &categoryAccum{monthTotals: make(map[string]float64)}
			accums[t.Category] = acc
		}
		acc.monthTotals[t.Date.Format("2006-01")] += t.Amount
		acc.totalSpent += t.Amount
		acc.count++
	}

	stats := make(map[model.Category]CategoryStats, len(accums))
	for category, acc := range accums {
		totals := make([]float64, 0, len(acc.monthTotals))
		for _, v := range acc.monthTotals {
			totals = append(totals, v)
		}
		mean, std := meanStd(totals)
		min, max := minMax(totals)

		variability := 0.0
		if mean > 0 {
			variability = std / mean
		}

		stats[category] = CategoryStats{
			AvgMonthly:       mean,
			StdMonthly:       std,
			MinMonthly:       min,
			MaxMonthly:       max,
			TotalSpent:       acc.totalSpent,
			TransactionCount: acc.count,
			Variability:      variability,
		}
	}
	return stats
}

// CategorySummary is the per-transaction view of a category used in the
// spending-analysis breakdown: totals over all transactions rather than
// per-month statistics.
type CategorySummary struct {
	TotalSpent       float64 `json:"total_spent"`
	TransactionCount int     `json:"transaction_count"`
	AvgAmount        float64 `json:"avg_amount"`
	Percentage       float64 `json:"percentage"`
}

// SummarizeCategories computes the category breakdown of expense spending:
// total, count, mean transaction amount, and each category's share of
// overall expenses.
func SummarizeCategories(transactions []*model.Transaction) map[model.Category]CategorySummary {
	summaries := make(map[model.Category]CategorySummary)
	var totalSpending float64

	for _, t := range transactions {
		if t.Type != model.TypeExpense {
			continue
		}
		s := summaries[t.Category]
		s.TotalSpent += t.Amount
		s.TransactionCount++
		summaries[t.Category] = s
		totalSpending += t.Amount
	}

	for category, s := range summaries {
		s.AvgAmount = s.TotalSpent / float64(s.TransactionCount)
		if totalSpending > 0 {
			s.Percentage = s.TotalSpent / totalSpending * 100
		}
		summaries[category] = s
	}
	return summaries
}

// meanStd returns the mean and sample standard deviation of values. Fewer
// than two values gives a standard deviation of 0.
func meanStd(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n

	if n < 2 {
		return mean, 0
	}
	var varianceSum float64
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	std = math.Sqrt(varianceSum / (n - 1))
	return mean, std
}

func minMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
