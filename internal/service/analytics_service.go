// Package service exposes the analytics engine over a JSON HTTP API. The
// service layer fetches transaction and budget data once per request and
// hands it to the pure computation packages; nothing here touches storage
// beyond the Store interface.
package service

import (
	"context"
	"log"
	"time"

	"github.com/finsight/backend/internal/analytics"
	"github.com/finsight/backend/internal/forecast"
	"github.com/finsight/backend/internal/model"
	"github.com/finsight/backend/internal/store"
)

const (
	// analysisLimit caps how many transactions feed a spending analysis or
	// forecast. One page of this size is fetched per request.
	analysisLimit = 1000
	// recommendationLimit caps the transactions behind budget
	// recommendations.
	recommendationLimit = 500
	// recommendationLookback is the spending window budget recommendations
	// consider.
	recommendationLookback = 30 * 24 * time.Hour
)

const analysisPeriodLabel = "30 days"

// AnalyticsService orchestrates spending analysis, forecasting and budget
// recommendations for one store.
type AnalyticsService struct {
	store      store.Store
	forecaster *forecast.Forecaster

	// now is stubbed in tests to pin lookback windows.
	now func() time.Time
}

// NewAnalyticsService creates the service. The forecaster persists its
// models through the same store.
func NewAnalyticsService(s store.Store) *AnalyticsService {
	return NewAnalyticsServiceWithModelStore(s, s)
}

// NewAnalyticsServiceWithModelStore keeps forecast model snapshots in a
// separate backend, e.g. a Cloud Storage bucket.
func NewAnalyticsServiceWithModelStore(s store.Store, models forecast.ModelStore) *AnalyticsService {
	return &AnalyticsService{
		store:      s,
		forecaster: forecast.New(models),
		now:        time.Now,
	}
}

// SpendingAnalysis is the full spending report for one user.
type SpendingAnalysis struct {
	TotalSpending     float64                                      `json:"total_spending"`
	TransactionCount  int                                          `json:"transaction_count"`
	CategoryBreakdown map[model.Category]analytics.CategorySummary `json:"category_breakdown"`
	SpendingTrends    *analytics.TrendReport                       `json:"spending_trends,omitempty"`
	SpendingPatterns  analytics.SpendingPatterns                   `json:"spending_patterns"`
	Insights          []analytics.Insight                          `json:"insights"`
}

// AnalyzeSpending fetches the user's recent transactions and produces the
// category breakdown, behavioral patterns and insights, plus temporal trends
// when includeTrends is set. Returns NO_DATA when the user has no
// transactions at all.
func (s *AnalyticsService) AnalyzeSpending(ctx context.Context, userID string, granularity analytics.Granularity, includeTrends bool) (*SpendingAnalysis, error) {
	transactions, err := s.recentTransactions(ctx, userID, analysisLimit)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, analytics.NewError(analytics.ErrNoData, "no transaction data available for analysis")
	}

	breakdown := analytics.SummarizeCategories(transactions)
	var totalSpending float64
	var expenseCount int
	for _, summary := range breakdown {
		totalSpending += summary.TotalSpent
		expenseCount += summary.TransactionCount
	}

	result := &SpendingAnalysis{
		TotalSpending:     totalSpending,
		TransactionCount:  expenseCount,
		CategoryBreakdown: breakdown,
		SpendingPatterns:  analytics.AnalyzePatterns(transactions),
		Insights:          analytics.GenerateInsights(transactions),
	}
	if includeTrends {
		trends := analytics.AnalyzeTrends(transactions, granularity)
		result.SpendingTrends = &trends
	}
	return result, nil
}

// PredictExpenses forecasts the user's expense spend for the next
// monthsAhead months, optionally scoped to one category.
func (s *AnalyticsService) PredictExpenses(ctx context.Context, userID string, monthsAhead int, category model.Category) (*forecast.Result, error) {
	transactions, err := s.recentTransactions(ctx, userID, analysisLimit)
	if err != nil {
		return nil, err
	}
	return s.forecaster.Predict(ctx, userID, transactions, monthsAhead, category)
}

// OptimizeBudget reallocates the user's per-category budget toward the
// target savings rate. Monthly income is estimated as total income divided
// by the number of distinct months income was received in.
func (s *AnalyticsService) OptimizeBudget(ctx context.Context, userID string, targetSavingsRate float64, priorityCategories []model.Category) (*analytics.OptimizationResult, error) {
	if targetSavingsRate <= 0 {
		targetSavingsRate = analytics.DefaultTargetSavingsRate
	}

	transactions, err := s.recentTransactions(ctx, userID, analysisLimit)
	if err != nil {
		return nil, err
	}

	stats := analytics.AggregateByCategory(transactions)
	monthlyIncome := estimateMonthlyIncome(transactions)
	return analytics.OptimizeBudget(stats, monthlyIncome, targetSavingsRate, priorityCategories)
}

// BudgetRecommendationReport wraps budget recommendations with the window
// they were computed over.
type BudgetRecommendationReport struct {
	Recommendations      []analytics.BudgetRecommendation `json:"recommendations"`
	AnalysisPeriod       string                           `json:"analysis_period"`
	TotalRecommendations int                              `json:"total_recommendations"`
}

// GetBudgetRecommendations compares the user's monthly budgets against
// their last 30 days of spending.
func (s *AnalyticsService) GetBudgetRecommendations(ctx context.Context, userID string) (*BudgetRecommendationReport, error) {
	budgets, err := s.store.ListBudgets(ctx, userID, model.PeriodMonthly)
	if err != nil {
		return nil, analytics.WrapError(analytics.ErrComputationFailure, "list budgets", err)
	}

	since := s.now().Add(-recommendationLookback)
	page, err := s.store.ListTransactions(ctx, userID, 1, recommendationLimit, &model.TransactionFilter{
		Type:      model.TypeExpense,
		StartDate: &since,
	})
	if err != nil {
		return nil, analytics.WrapError(analytics.ErrComputationFailure, "list transactions", err)
	}

	recommendations := analytics.RecommendBudgets(budgets, page.Transactions)
	return &BudgetRecommendationReport{
		Recommendations:      recommendations,
		AnalysisPeriod:       analysisPeriodLabel,
		TotalRecommendations: len(recommendations),
	}, nil
}

// GetBudgetAnalysis reports budget health for one period. Spent/remaining
// figures come pre-populated by the store's trailing windows.
func (s *AnalyticsService) GetBudgetAnalysis(ctx context.Context, userID string, period model.BudgetPeriod) (*analytics.BudgetAnalysis, error) {
	if period == "" {
		period = model.PeriodMonthly
	}
	budgets, err := s.store.ListBudgets(ctx, userID, period)
	if err != nil {
		return nil, analytics.WrapError(analytics.ErrComputationFailure, "list budgets", err)
	}
	return analytics.AnalyzeBudgets(budgets)
}

// FinancialInsights is the combined dashboard payload. Sections the user
// lacks data for are omitted rather than failing the whole report.
type FinancialInsights struct {
	SpendingAnalysis      *SpendingAnalysis           `json:"spending_analysis,omitempty"`
	ExpensePredictions    *forecast.Result            `json:"expense_predictions,omitempty"`
	BudgetRecommendations *BudgetRecommendationReport `json:"budget_recommendations,omitempty"`
}

// GetFinancialInsights assembles the spending analysis, expense forecast and
// budget recommendations into one report. Returns NO_DATA only when every
// section comes up empty.
func (s *AnalyticsService) GetFinancialInsights(ctx context.Context, userID string) (*FinancialInsights, error) {
	insights := &FinancialInsights{}

	analysis, err := s.AnalyzeSpending(ctx, userID, analytics.GranularityMonthly, true)
	if err == nil {
		insights.SpendingAnalysis = analysis
	} else if !analytics.IsNoData(err) {
		log.Printf("financial insights: spending analysis failed for user %s: %v", userID, err)
	}

	predictions, err := s.PredictExpenses(ctx, userID, forecast.DefaultMonthsAhead, "")
	if err == nil {
		insights.ExpensePredictions = predictions
	} else if !analytics.IsNoData(err) {
		log.Printf("financial insights: expense prediction failed for user %s: %v", userID, err)
	}

	recommendations, err := s.GetBudgetRecommendations(ctx, userID)
	if err != nil {
		log.Printf("financial insights: budget recommendations failed for user %s: %v", userID, err)
	} else if recommendations.TotalRecommendations > 0 {
		insights.BudgetRecommendations = recommendations
	}

	if insights.SpendingAnalysis == nil && insights.ExpensePredictions == nil && insights.BudgetRecommendations == nil {
		return nil, analytics.NewError(analytics.ErrNoData, "no financial data available")
	}
	return insights, nil
}

// CategorizeTransaction classifies a transaction description into a
// category with a confidence score.
func (s *AnalyticsService) CategorizeTransaction(description string, amount float64, merchant string) analytics.Prediction {
	return analytics.ClassifyTransaction(description, amount, merchant)
}

// recentTransactions fetches one page of the user's most recent activity.
func (s *AnalyticsService) recentTransactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	page, err := s.store.ListTransactions(ctx, userID, 1, limit, nil)
	if err != nil {
		return nil, analytics.WrapError(analytics.ErrComputationFailure, "list transactions", err)
	}
	return page.Transactions, nil
}

// estimateMonthlyIncome averages income over the distinct months it was
// received in, so a partial history does not inflate the monthly figure.
func estimateMonthlyIncome(transactions []*model.Transaction) float64 {
	months := make(map[string]bool)
	var total float64
	for _, t := range transactions {
		if t.Type != model.TypeIncome {
			continue
		}
		total += t.Amount
		months[t.Date.Format("2006-01")] = true
	}
	if len(months) == 0 {
		return 0
	}
	return total / float64(len(months))
}
