package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/backend/internal/model"
)

func insightsByType(insights []Insight) map[string]Insight {
	byType := make(map[string]Insight, len(insights))
	for _, i := range insights {
		byType[i.Type] = i
	}
	return byType
}

func TestGenerateInsightsTopCategoryOnly(t *testing.T) {
	// Expenses but no income: the savings-rate insight must not fire.
	transactions := []*model.Transaction{
		expense(model.CategoryFood, 600, day(2024, time.January, 5)),
		expense(model.CategoryShopping, 400, day(2024, time.January, 6)),
	}

	insights := GenerateInsights(transactions)
	require.Len(t, insights, 1)

	top := insights[0]
	assert.Equal(t, InsightTopCategory, top.Type)
	assert.Equal(t, model.CategoryFood, top.Category)
	assert.InDelta(t, 600, top.Amount, 1e-9)
	assert.InDelta(t, 60, top.Percentage, 1e-9)
	assert.Equal(t, "Your highest spending category is Food, accounting for 60.0% of your expenses.", top.Message)
	assert.Nil(t, top.SavingsRate)
}

func TestGenerateInsightsSavingsRate(t *testing.T) {
	tests := []struct {
		name     string
		income   float64
		expenses float64
		status   string
	}{
		{name: "good", income: 1000, expenses: 500, status: SavingsGood},
		{name: "moderate", income: 1000, expenses: 900, status: SavingsModerate},
		{name: "warning", income: 1000, expenses: 1200, status: SavingsWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactions := []*model.Transaction{
				income(tt.income, day(2024, time.January, 1)),
				expense(model.CategoryFood, tt.expenses, day(2024, time.January, 5)),
			}

			byType := insightsByType(GenerateInsights(transactions))
			savings, ok := byType[InsightSavingsRate]
			require.True(t, ok)
			assert.Equal(t, tt.status, savings.Status)
			require.NotNil(t, savings.SavingsRate)
			assert.InDelta(t, (tt.income-tt.expenses)/tt.income*100, *savings.SavingsRate, 1e-9)
		})
	}
}

func TestGenerateInsightsSpendingMoreThanEarning(t *testing.T) {
	transactions := []*model.Transaction{
		income(100, day(2024, time.January, 1)),
		expense(model.CategoryFood, 200, day(2024, time.January, 5)),
	}

	byType := insightsByType(GenerateInsights(transactions))
	savings := byType[InsightSavingsRate]
	assert.Equal(t, "You're spending more than you earn. Consider reviewing your expenses.", savings.Message)
}

func TestGenerateInsightsSmallTransactions(t *testing.T) {
	// 4 of 5 expenses below 25: well over the 30% threshold.
	transactions := []*model.Transaction{
		expense(model.CategoryFood, 5, day(2024, time.January, 1)),
		expense(model.CategoryFood, 10, day(2024, time.January, 2)),
		expense(model.CategoryFood, 15, day(2024, time.January, 3)),
		expense(model.CategoryFood, 20, day(2024, time.January, 4)),
		expense(model.CategoryShopping, 500, day(2024, time.January, 5)),
	}

	byType := insightsByType(GenerateInsights(transactions))
	small, ok := byType[InsightSmallTransactions]
	require.True(t, ok)
	assert.Equal(t, 4, small.Count)
	assert.InDelta(t, 50, small.TotalAmount, 1e-9)
	assert.Equal(t, "You have many small transactions totaling $50.00. Consider tracking these more carefully.", small.Message)
}

func TestGenerateInsightsSmallTransactionsBelowThreshold(t *testing.T) {
	// 1 of 4 small: 25% does not cross the 30% bar.
	transactions := []*model.Transaction{
		expense(model.CategoryFood, 10, day(2024, time.January, 1)),
		expense(model.CategoryFood, 100, day(2024, time.January, 2)),
		expense(model.CategoryFood, 100, day(2024, time.January, 3)),
		expense(model.CategoryFood, 100, day(2024, time.January, 4)),
	}

	byType := insightsByType(GenerateInsights(transactions))
	_, ok := byType[InsightSmallTransactions]
	assert.False(t, ok)
}

func TestGenerateInsightsNoExpenses(t *testing.T) {
	assert.Empty(t, GenerateInsights(nil))
	assert.Empty(t, GenerateInsights([]*model.Transaction{income(1000, day(2024, time.January, 1))}))
}

func TestGenerateInsightsTopCategoryTieBreak(t *testing.T) {
	transactions := []*model.Transaction{
		expense(model.CategoryShopping, 100, day(2024, time.January, 1)),
		expense(model.CategoryFood, 100, day(2024, time.January, 2)),
	}

	byType := insightsByType(GenerateInsights(transactions))
	assert.Equal(t, model.CategoryFood, byType[InsightTopCategory].Category)
}
