// Package model defines the domain types shared by the store, the analytics
// engine, and the service layer. These mirror the wire contract: JSON field
// names are load-bearing.
package model

import "time"

// TransactionType is a closed enumeration of ledger entry kinds.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Category is a closed enumeration of transaction categories.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryUtilities      Category = "Utilities"
	CategoryHealthcare     Category = "Healthcare"
	CategoryShopping       Category = "Shopping"
	CategoryIncome         Category = "Income"
	CategoryOther          Category = "Other"
)

// Categories lists every valid category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransportation,
		CategoryEntertainment,
		CategoryUtilities,
		CategoryHealthcare,
		CategoryShopping,
		CategoryIncome,
		CategoryOther,
	}
}

// Transaction is a single ledger entry. The engine treats transactions as
// read-only input; amount is always positive, the sign is carried by Type.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Merchant    string          `json:"merchant,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BudgetPeriod is the cadence a budget nominally covers.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Budget is a per-category spending limit. Spent, Remaining and
// PercentageUsed are derived by the store over a trailing window ending at
// the current instant (7 days weekly, 30 days monthly, 365 days yearly) and
// are never persisted.
type Budget struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Category       Category     `json:"category"`
	Amount         float64      `json:"amount"`
	Period         BudgetPeriod `json:"period"`
	Spent          float64      `json:"spent"`
	Remaining      float64      `json:"remaining"`
	PercentageUsed float64      `json:"percentage_used"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TransactionFilter narrows a transaction listing. Zero values mean "no
// constraint". Date bounds are inclusive. Search is a case-insensitive
// substring match over title and description.
type TransactionFilter struct {
	Type      TransactionType
	Category  Category
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// TransactionPage is one page of a date-descending transaction listing.
type TransactionPage struct {
	Transactions []*Transaction `json:"transactions"`
	TotalCount   int            `json:"total_count"`
	Page         int            `json:"page"`
	Limit        int            `json:"limit"`
	TotalPages   int            `json:"total_pages"`
}

// TypeTotals aggregates amount and count for one transaction type.
type TypeTotals struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// UserStatistics summarizes a user's ledger by transaction type.
type UserStatistics struct {
	Income  TypeTotals `json:"income"`
	Expense TypeTotals `json:"expense"`
}
