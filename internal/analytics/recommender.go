package analytics

import (
	"fmt"
	"sort"

	"github.com/finsight/backend/internal/model"
)

// Budget recommendation types.
const (
	RecommendationOverBudget    = "over_budget"
	RecommendationCreateBudget  = "create_budget"
	RecommendationHighUsage     = "high_usage"
	RecommendationUnderutilized = "underutilized"
)

// Recommendation severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// BudgetRecommendation is one actionable finding about a user's budgets.
// Budget.Spent is expected to be populated by the store over the trailing
// window for the budget's period before it reaches this code.
type BudgetRecommendation struct {
	Type            string         `json:"type"`
	Category        model.Category `json:"category"`
	Message         string         `json:"message"`
	Severity        string         `json:"severity,omitempty"`
	CurrentBudget   float64        `json:"current_budget,omitempty"`
	ActualSpending  float64        `json:"actual_spending,omitempty"`
	SuggestedBudget float64        `json:"suggested_budget,omitempty"`
	BasedOnSpending float64        `json:"based_on_spending,omitempty"`
}

// RecommendBudgets compares existing budgets against actual expense
// activity. It emits over_budget and usage flags for existing budgets, and
// create_budget suggestions for categories that see spending but have no
// budget at all.
func RecommendBudgets(budgets []*model.Budget, transactions []*model.Transaction) []BudgetRecommendation {
	recommendations := budgetUsageRecommendations(budgets)

	budgeted := make(map[model.Category]bool, len(budgets))
	for _, b := range budgets {
		budgeted[b.Category] = true
	}

	spendByCategory := make(map[model.Category]float64)
	for _, t := range transactions {
		if t.Type != model.TypeExpense {
			continue
		}
		spendByCategory[t.Category] += t.Amount
	}

	categories := make([]model.Category, 0, len(spendByCategory))
	for c := range spendByCategory {
		if !budgeted[c] {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, category := range categories {
		spent := spendByCategory[category]
		recommendations = append(recommendations, BudgetRecommendation{
			Type:            RecommendationCreateBudget,
			Category:        category,
			Message:         fmt.Sprintf("Consider creating a budget for %s", category),
			SuggestedBudget: spent * 1.2,
			BasedOnSpending: spent,
		})
	}
	return recommendations
}

// budgetUsageRecommendations derives over_budget, high_usage and
// underutilized findings from budgets alone. The checks are independent: an
// over-budget category also reports as neither high_usage nor underutilized
// only because the percentage bands do not overlap.
func budgetUsageRecommendations(budgets []*model.Budget) []BudgetRecommendation {
	recommendations := []BudgetRecommendation{}

	for _, b := range budgets {
		if b.Spent > b.Amount {
			overage := b.Spent - b.Amount
			severity := SeverityMedium
			if overage > b.Amount*0.2 {
				severity = SeverityHigh
			}
			recommendations = append(recommendations, BudgetRecommendation{
				Type:            RecommendationOverBudget,
				Category:        b.Category,
				Message:         fmt.Sprintf("You've exceeded your %s budget by $%.2f", b.Category, overage),
				Severity:        severity,
				CurrentBudget:   b.Amount,
				ActualSpending:  b.Spent,
				SuggestedBudget: b.Spent * 1.1,
			})
		}
	}

	for _, b := range budgets {
		if b.PercentageUsed > 80 && b.PercentageUsed <= 100 {
			recommendations = append(recommendations, BudgetRecommendation{
				Type:     RecommendationHighUsage,
				Category: b.Category,
				Message:  fmt.Sprintf("You've used %.1f%% of your %s budget", b.PercentageUsed, b.Category),
				Severity: SeverityMedium,
			})
		}
	}

	for _, b := range budgets {
		if b.PercentageUsed < 50 {
			recommendations = append(recommendations, BudgetRecommendation{
				Type:     RecommendationUnderutilized,
				Category: b.Category,
				Message:  fmt.Sprintf("You've only used %.1f%% of your %s budget. Consider reallocating funds.", b.PercentageUsed, b.Category),
				Severity: SeverityLow,
			})
		}
	}
	return recommendations
}

// BudgetSummary aggregates budget utilization across categories.
type BudgetSummary struct {
	TotalBudgeted         float64 `json:"total_budgeted"`
	TotalSpent            float64 `json:"total_spent"`
	TotalRemaining        float64 `json:"total_remaining"`
	CategoriesOverBudget  int     `json:"categories_over_budget"`
	CategoriesUnderBudget int     `json:"categories_under_budget"`
	OverallPercentage     float64 `json:"overall_percentage"`
}

// BudgetAnalysis is the full budget health report.
type BudgetAnalysis struct {
	Budgets         []*model.Budget        `json:"budgets"`
	Summary         BudgetSummary          `json:"summary"`
	Recommendations []BudgetRecommendation `json:"recommendations"`
}

// AnalyzeBudgets summarizes budget utilization and attaches usage
// recommendations. Returns NO_DATA when the user has no budgets for the
// period.
func AnalyzeBudgets(budgets []*model.Budget) (*BudgetAnalysis, error) {
	if len(budgets) == 0 {
		return nil, NewError(ErrNoData, "no budgets to analyze")
	}

	summary := BudgetSummary{}
	for _, b := range budgets {
		summary.TotalBudgeted += b.Amount
		summary.TotalSpent += b.Spent
		summary.TotalRemaining += b.Remaining
		if b.Spent > b.Amount {
			summary.CategoriesOverBudget++
		} else {
			summary.CategoriesUnderBudget++
		}
	}
	if summary.TotalBudgeted > 0 {
		summary.OverallPercentage = summary.TotalSpent / summary.TotalBudgeted * 100
	}

	return &BudgetAnalysis{
		Budgets:         budgets,
		Summary:         summary,
		Recommendations: budgetUsageRecommendations(budgets),
	}, nil
}
