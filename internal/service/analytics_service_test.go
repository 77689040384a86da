package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/finsight/backend/internal/analytics"
	"github.com/finsight/backend/internal/forecast"
	"github.com/finsight/backend/internal/model"
	"github.com/finsight/backend/internal/store"
)

func forecastNotFound() error {
	return forecast.ErrModelNotFound
}

func expense(category model.Category, amount float64, date time.Time) *model.Transaction {
	return &model.Transaction{
		UserID:   "user123",
		Type:     model.TypeExpense,
		Category: category,
		Amount:   amount,
		Date:     date,
	}
}

func income(amount float64, date time.Time) *model.Transaction {
	return &model.Transaction{
		UserID:   "user123",
		Type:     model.TypeIncome,
		Category: model.CategoryIncome,
		Amount:   amount,
		Date:     date,
	}
}

func page(transactions ...*model.Transaction) *model.TransactionPage {
	return &model.TransactionPage{
		Transactions: transactions,
		TotalCount:   len(transactions),
		Page:         1,
		Limit:        analysisLimit,
		TotalPages:   1,
	}
}

func TestAnalyzeSpending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	transactions := page(
		expense(model.CategoryFood, 600, time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)),
		expense(model.CategoryShopping, 400, time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)),
		income(2000, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
	)

	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(transactions, nil)

	analysis, err := service.AnalyzeSpending(ctx, "user123", analytics.GranularityMonthly, true)
	require.NoError(t, err)

	assert.InDelta(t, 1000, analysis.TotalSpending, 1e-9)
	assert.Equal(t, 2, analysis.TransactionCount)
	assert.Len(t, analysis.CategoryBreakdown, 2)
	assert.InDelta(t, 60, analysis.CategoryBreakdown[model.CategoryFood].Percentage, 1e-9)
	require.NotNil(t, analysis.SpendingTrends)
	assert.NotEmpty(t, analysis.Insights)
}

func TestAnalyzeSpendingWithoutTrends(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(page(expense(model.CategoryFood, 50, time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC))), nil)

	analysis, err := service.AnalyzeSpending(ctx, "user123", analytics.GranularityMonthly, false)
	require.NoError(t, err)
	assert.Nil(t, analysis.SpendingTrends)
}

func TestAnalyzeSpendingNoData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(page(), nil)

	_, err := service.AnalyzeSpending(ctx, "user123", analytics.GranularityMonthly, true)
	require.Error(t, err)
	assert.True(t, analytics.IsNoData(err))
}

func TestAnalyzeSpendingStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(nil, errors.New("backend unavailable"))

	_, err := service.AnalyzeSpending(ctx, "user123", analytics.GranularityMonthly, true)
	require.Error(t, err)
	assert.Equal(t, analytics.ErrComputationFailure, analytics.CodeOf(err))
}

func TestPredictExpensesFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	// Sparse history: below the training minimum, so the historical
	// average answers. The forecaster misses its registry and checks
	// durable storage first.
	transactions := page(
		expense(model.CategoryFood, 100, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
		expense(model.CategoryFood, 300, time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)),
	)

	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(transactions, nil)
	mockStore.EXPECT().
		GetForecastModel(ctx, "user123").
		Return(nil, forecastNotFound())

	result, err := service.PredictExpenses(ctx, "user123", 2, "")
	require.NoError(t, err)
	require.Len(t, result.Predictions, 2)
	assert.InDelta(t, 200, result.Predictions[0].PredictedAmount, 1e-9)
	assert.InDelta(t, 0.5, result.Predictions[0].Confidence, 1e-9)
	assert.NotEmpty(t, result.Note)
}

func TestOptimizeBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	// Income arrives in two distinct months: the monthly estimate is
	// 4000/2 = 2000, spending averages push the reduce path.
	transactions := page(
		income(2000, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)),
		income(2000, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)),
		expense(model.CategoryFood, 1800, time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)),
		expense(model.CategoryFood, 1800, time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)),
	)

	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(transactions, nil)

	result, err := service.OptimizeBudget(ctx, "user123", 0, nil)
	require.NoError(t, err)

	assert.InDelta(t, 2000, result.MonthlyIncome, 1e-9)
	// The zero target savings rate falls back to the 20% default.
	assert.InDelta(t, analytics.DefaultTargetSavingsRate, result.TargetSavingsRate, 1e-9)
	assert.Equal(t, analytics.OptimizationReduce, result.OptimizationType)
}

func TestOptimizeBudgetNoExpenses(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(page(income(1000, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))), nil)

	_, err := service.OptimizeBudget(ctx, "user123", 0.2, nil)
	require.Error(t, err)
	assert.True(t, analytics.IsNoData(err))
}

func TestGetBudgetRecommendations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)
	service.now = func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	budgets := []*model.Budget{
		{UserID: "user123", Category: model.CategoryFood, Amount: 500, Period: model.PeriodMonthly,
			Spent: 650, Remaining: -150, PercentageUsed: 130},
	}

	mockStore.EXPECT().
		ListBudgets(ctx, "user123", model.PeriodMonthly).
		Return(budgets, nil)
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, recommendationLimit, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _ int, filter *model.TransactionFilter) (*model.TransactionPage, error) {
			require.NotNil(t, filter)
			assert.Equal(t, model.TypeExpense, filter.Type)
			require.NotNil(t, filter.StartDate)
			assert.Equal(t, time.Date(2024, time.May, 16, 0, 0, 0, 0, time.UTC), *filter.StartDate)
			return page(expense(model.CategoryShopping, 200, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))), nil
		})

	report, err := service.GetBudgetRecommendations(ctx, "user123")
	require.NoError(t, err)

	assert.Equal(t, "30 days", report.AnalysisPeriod)
	assert.Equal(t, len(report.Recommendations), report.TotalRecommendations)

	types := make(map[string]bool)
	for _, r := range report.Recommendations {
		types[r.Type] = true
	}
	assert.True(t, types[analytics.RecommendationOverBudget])
	assert.True(t, types[analytics.RecommendationCreateBudget])
}

func TestGetBudgetAnalysis(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	budgets := []*model.Budget{
		{UserID: "user123", Category: model.CategoryFood, Amount: 500, Period: model.PeriodMonthly,
			Spent: 200, Remaining: 300, PercentageUsed: 40},
	}

	// An empty period defaults to monthly.
	mockStore.EXPECT().
		ListBudgets(ctx, "user123", model.PeriodMonthly).
		Return(budgets, nil)

	analysis, err := service.GetBudgetAnalysis(ctx, "user123", "")
	require.NoError(t, err)
	assert.InDelta(t, 500, analysis.Summary.TotalBudgeted, 1e-9)
	assert.InDelta(t, 40, analysis.Summary.OverallPercentage, 1e-9)
}

func TestGetBudgetAnalysisNoBudgets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	mockStore.EXPECT().
		ListBudgets(ctx, "user123", model.PeriodYearly).
		Return([]*model.Budget{}, nil)

	_, err := service.GetBudgetAnalysis(ctx, "user123", model.PeriodYearly)
	require.Error(t, err)
	assert.True(t, analytics.IsNoData(err))
}

func TestGetFinancialInsights(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	transactions := page(
		expense(model.CategoryFood, 100, time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)),
		expense(model.CategoryFood, 200, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)),
	)

	// Spending analysis and prediction each fetch a page.
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(transactions, nil).
		Times(2)
	mockStore.EXPECT().
		GetForecastModel(ctx, "user123").
		Return(nil, forecastNotFound())
	mockStore.EXPECT().
		ListBudgets(ctx, "user123", model.PeriodMonthly).
		Return([]*model.Budget{}, nil)
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, recommendationLimit, gomock.Any()).
		Return(transactions, nil)

	insights, err := service.GetFinancialInsights(ctx, "user123")
	require.NoError(t, err)
	assert.NotNil(t, insights.SpendingAnalysis)
	assert.NotNil(t, insights.ExpensePredictions)
	assert.NotNil(t, insights.BudgetRecommendations)
}

func TestGetFinancialInsightsNoData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := store.NewMockStore(ctrl)
	service := NewAnalyticsService(mockStore)

	ctx := context.Background()
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, analysisLimit, nil).
		Return(page(), nil).
		Times(2)
	mockStore.EXPECT().
		GetForecastModel(ctx, "user123").
		Return(nil, forecastNotFound())
	mockStore.EXPECT().
		ListBudgets(ctx, "user123", model.PeriodMonthly).
		Return([]*model.Budget{}, nil)
	mockStore.EXPECT().
		ListTransactions(ctx, "user123", 1, recommendationLimit, gomock.Any()).
		Return(page(), nil)

	_, err := service.GetFinancialInsights(ctx, "user123")
	require.Error(t, err)
	assert.True(t, analytics.IsNoData(err))
}

func TestCategorizeTransaction(t *testing.T) {
	service := NewAnalyticsService(nil)

	prediction := service.CategorizeTransaction("Pizza Hut delivery", 25, "")
	assert.Equal(t, model.CategoryFood, prediction.Category)
	assert.InDelta(t, 0.8, prediction.Confidence, 1e-9)
}
