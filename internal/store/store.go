// Package store provides persistence for transactions, budgets and trained
// forecast models, with interchangeable in-memory and Firestore backends.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsight/backend/internal/forecast"
	"github.com/finsight/backend/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateBudget is returned when a budget already exists for the same
// (user, category, period) triple. Budgets are unique per period, so a
// weekly and a monthly budget for the same category may coexist.
var ErrDuplicateBudget = errors.New("budget already exists for category and period")

// Store defines the persistence operations used by the service layer.
type Store interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, transaction *model.Transaction) error
	GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, transaction *model.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	ListTransactions(ctx context.Context, userID string, page, limit int, filter *model.TransactionFilter) (*model.TransactionPage, error)
	GetUserStatistics(ctx context.Context, userID string, startDate, endDate *time.Time) (*model.UserStatistics, error)

	// Budget operations. ListBudgets populates Spent/Remaining/
	// PercentageUsed over the trailing window for the requested period.
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, budgetID string) (*model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error
	ListBudgets(ctx context.Context, userID string, period model.BudgetPeriod) ([]*model.Budget, error)

	// Forecast model snapshots
	SaveForecastModel(ctx context.Context, userID string, snapshot *forecast.Snapshot) error
	GetForecastModel(ctx context.Context, userID string) (*forecast.Snapshot, error)
}

// ensureID returns id, generating one for entities created without an ID.
func ensureID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// trailingWindow maps a budget period to its lookback duration from the
// current instant: 7 days weekly, 30 days monthly, 365 days yearly.
// Unrecognized periods default to 30 days.
func trailingWindow(period model.BudgetPeriod) time.Duration {
	switch period {
	case model.PeriodWeekly:
		return 7 * 24 * time.Hour
	case model.PeriodYearly:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// matchesFilter reports whether a transaction passes the listing filter.
// Date bounds are inclusive; search is a case-insensitive substring match
// over title and description.
func matchesFilter(t *model.Transaction, filter *model.TransactionFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Type != "" && t.Type != filter.Type {
		return false
	}
	if filter.Category != "" && t.Category != filter.Category {
		return false
	}
	if filter.StartDate != nil && t.Date.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && t.Date.After(*filter.EndDate) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// paginate sorts transactions date-descending and slices out one page.
func paginate(transactions []*model.Transaction, page, limit int) *model.TransactionPage {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})

	totalCount := len(transactions)
	totalPages := (totalCount + limit - 1) / limit

	start := (page - 1) * limit
	if start > totalCount {
		start = totalCount
	}
	end := start + limit
	if end > totalCount {
		end = totalCount
	}

	return &model.TransactionPage{
		Transactions: transactions[start:end],
		TotalCount:   totalCount,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
	}
}

// statisticsFrom sums amounts and counts by transaction type.
func statisticsFrom(transactions []*model.Transaction) *model.UserStatistics {
	stats := &model.UserStatistics{}
	for _, t := range transactions {
		switch t.Type {
		case model.TypeIncome:
			stats.Income.Total += t.Amount
			stats.Income.Count++
		case model.TypeExpense:
			stats.Expense.Total += t.Amount
			stats.Expense.Count++
		}
	}
	return stats
}

// applyBudgetUsage fills the derived Spent/Remaining/PercentageUsed fields
// from expense activity inside the trailing window ending at now.
func applyBudgetUsage(budgets []*model.Budget, transactions []*model.Transaction, now time.Time) {
	for _, b := range budgets {
		windowStart := now.Add(-trailingWindow(b.Period))

		var spent float64
		for _, t := range transactions {
			if t.Type != model.TypeExpense || t.Category != b.Category {
				continue
			}
			if t.Date.Before(windowStart) || t.Date.After(now) {
				continue
			}
			spent += t.Amount
		}

		b.Spent = spent
		b.Remaining = b.Amount - spent
		if b.Amount > 0 {
			b.PercentageUsed = spent / b.Amount * 100
		} else {
			b.PercentageUsed = 0
		}
	}
}

// sortBudgets orders budgets by category for stable listings.
func sortBudgets(budgets []*model.Budget) {
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].Category < budgets[j].Category
	})
}
