package analytics

import (
	"fmt"

	"github.com/finsight/backend/internal/model"
)

// Insight types.
const (
	InsightTopCategory       = "top_category"
	InsightSavingsRate       = "savings_rate"
	InsightSmallTransactions = "small_transactions"
)

// Savings-rate statuses.
const (
	SavingsGood     = "good"     // > 20%
	SavingsModerate = "moderate" // (0, 20]
	SavingsWarning  = "warning"  // <= 0
)

// smallTransactionThreshold is the amount below which a transaction counts
// as "small" for the overload insight.
const smallTransactionThreshold = 25.0

// Insight is a single human-readable finding about spending behavior.
// Numeric fields are populated per insight type.
type Insight struct {
	Type        string         `json:"type"`
	Message     string         `json:"message"`
	Category    model.Category `json:"category,omitempty"`
	Amount      float64        `json:"amount,omitempty"`
	Percentage  float64        `json:"percentage,omitempty"`
	SavingsRate *float64       `json:"savings_rate,omitempty"`
	Status      string         `json:"status,omitempty"`
	Count       int            `json:"count,omitempty"`
	TotalAmount float64        `json:"total_amount,omitempty"`
}

// GenerateInsights derives findings from the full (income + expense)
// transaction set. Each rule fires independently; with no expenses the
// result is empty.
func GenerateInsights(transactions []*model.Transaction) []Insight {
	var expenses []*model.Transaction
	var totalIncome, totalExpenses float64
	incomeCount := 0

	for _, t := range transactions {
		switch t.Type {
		case model.TypeExpense:
			expenses = append(expenses, t)
			totalExpenses += t.Amount
		case model.TypeIncome:
			totalIncome += t.Amount
			incomeCount++
		}
	}

	insights := []Insight{}
	if len(expenses) == 0 {
		return insights
	}

	insights = append(insights, topCategoryInsight(expenses, totalExpenses))

	if incomeCount > 0 {
		insights = append(insights, savingsRateInsight(totalIncome, totalExpenses))
	}

	if small, ok := smallTransactionInsight(expenses); ok {
		insights = append(insights, small)
	}
	return insights
}

func topCategoryInsight(expenses []*model.Transaction, totalExpenses float64) Insight {
	byCategory := make(map[model.Category]float64)
	for _, t := range expenses {
		byCategory[t.Category] += t.Amount
	}

	var topCategory model.Category
	var topAmount float64
	for category, amount := range byCategory {
		// Ties break toward the lexically smaller category so output is stable.
		if amount > topAmount || (amount == topAmount && (topCategory == "" || category < topCategory)) {
			topCategory = category
			topAmount = amount
		}
	}

	percentage := topAmount / totalExpenses * 100
	return Insight{
		Type: InsightTopCategory,
		Message: fmt.Sprintf("Your highest spending category is %s, accounting for %.1f%% of your expenses.",
			topCategory, percentage),
		Category:   topCategory,
		Amount:     topAmount,
		Percentage: percentage,
	}
}

func savingsRateInsight(totalIncome, totalExpenses float64) Insight {
	savingsRate := 0.0
	if totalIncome > 0 {
		savingsRate = (totalIncome - totalExpenses) / totalIncome * 100
	}

	insight := Insight{Type: InsightSavingsRate, SavingsRate: &savingsRate}
	switch {
	case savingsRate > 20:
		insight.Status = SavingsGood
		insight.Message = fmt.Sprintf("Great job! You're saving %.1f%% of your income.", savingsRate)
	case savingsRate > 0:
		insight.Status = SavingsModerate
		insight.Message = fmt.Sprintf("You're saving %.1f%% of your income. Consider increasing to 20%% or more.", savingsRate)
	default:
		insight.Status = SavingsWarning
		insight.Message = "You're spending more than you earn. Consider reviewing your expenses."
	}
	return insight
}

func smallTransactionInsight(expenses []*model.Transaction) (Insight, bool) {
	var count int
	var total float64
	for _, t := range expenses {
		if t.Amount < smallTransactionThreshold {
			count++
			total += t.Amount
		}
	}
	if float64(count) <= float64(len(expenses))*0.3 {
		return Insight{}, false
	}
	return Insight{
		Type: InsightSmallTransactions,
		Message: fmt.Sprintf("You have many small transactions totaling $%.2f. Consider tracking these more carefully.",
			total),
		Count:       count,
		TotalAmount: total,
	}, true
}
