package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/finsight/backend/internal/forecast"
	"github.com/finsight/backend/internal/model"
)

const (
	transactionsCollection = "transactions"
	budgetsCollection      = "budgets"
	modelsCollection       = "forecastModels"
)

// FirestoreStore implements the Store interface using Firestore.
//
// Listing queries filter by user (and coarse fields) server-side, then
// apply the substring search, sorting and pagination in memory: Firestore
// has no substring operator, and analytics inputs are capped at 1000 rows
// per request anyway.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	transaction.ID = ensureID(transaction.ID)
	now := time.Now().UTC()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	_, err := s.client.Collection(transactionsCollection).Doc(transaction.ID).Set(ctx, transaction)
	return err
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error) {
	doc, err := s.client.Collection(transactionsCollection).Doc(transactionID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("transaction not found: %w", err)
	}
	var transaction model.Transaction
	if err := doc.DataTo(&transaction); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &transaction, nil
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, transaction *model.Transaction) error {
	transaction.UpdatedAt = time.Now().UTC()
	_, err := s.client.Collection(transactionsCollection).Doc(transaction.ID).Set(ctx, transaction)
	return err
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, transactionID string) error {
	_, err := s.client.Collection(transactionsCollection).Doc(transactionID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, page, limit int, filter *model.TransactionFilter) (*model.TransactionPage, error) {
	query := s.client.Collection(transactionsCollection).Query.Where("UserID", "==", userID)
	if filter != nil {
		if filter.Type != "" {
			query = query.Where("Type", "==", string(filter.Type))
		}
		if filter.Category != "" {
			query = query.Where("Category", "==", string(filter.Category))
		}
	}

	transactions, err := s.collectTransactions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var matched []*model.Transaction
	for _, t := range transactions {
		if matchesFilter(t, filter) {
			matched = append(matched, t)
		}
	}
	return paginate(matched, page, limit), nil
}

func (s *FirestoreStore) GetUserStatistics(ctx context.Context, userID string, startDate, endDate *time.Time) (*model.UserStatistics, error) {
	query := s.client.Collection(transactionsCollection).Query.Where("UserID", "==", userID)
	transactions, err := s.collectTransactions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	filter := &model.TransactionFilter{StartDate: startDate, EndDate: endDate}
	var matched []*model.Transaction
	for _, t := range transactions {
		if matchesFilter(t, filter) {
			matched = append(matched, t)
		}
	}
	return statisticsFrom(matched), nil
}

// Budget operations

func (s *FirestoreStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	existing, err := s.findBudget(ctx, budget.UserID, budget.Category, budget.Period)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateBudget
	}

	budget.ID = ensureID(budget.ID)
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	_, err = s.client.Collection(budgetsCollection).Doc(budget.ID).Set(ctx, budget)
	return err
}

func (s *FirestoreStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	doc, err := s.client.Collection(budgetsCollection).Doc(budgetID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("budget not found: %w", err)
	}
	var budget model.Budget
	if err := doc.DataTo(&budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	return &budget, nil
}

func (s *FirestoreStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	existing, err := s.findBudget(ctx, budget.UserID, budget.Category, budget.Period)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != budget.ID {
		return ErrDuplicateBudget
	}

	budget.UpdatedAt = time.Now().UTC()
	_, err = s.client.Collection(budgetsCollection).Doc(budget.ID).Set(ctx, budget)
	return err
}

func (s *FirestoreStore) DeleteBudget(ctx context.Context, budgetID string) error {
	_, err := s.client.Collection(budgetsCollection).Doc(budgetID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string, period model.BudgetPeriod) ([]*model.Budget, error) {
	query := s.client.Collection(budgetsCollection).Query.
		Where("UserID", "==", userID).
		Where("Period", "==", string(period))

	budgets := []*model.Budget{}
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list budgets: %w", err)
		}
		var budget model.Budget
		if err := doc.DataTo(&budget); err != nil {
			return nil, fmt.Errorf("failed to parse budget: %w", err)
		}
		budgets = append(budgets, &budget)
	}

	now := time.Now()
	txQuery := s.client.Collection(transactionsCollection).Query.
		Where("UserID", "==", userID).
		Where("Type", "==", string(model.TypeExpense))
	transactions, err := s.collectTransactions(ctx, txQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load spending for budgets: %w", err)
	}

	applyBudgetUsage(budgets, transactions, now)
	sortBudgets(budgets)
	return budgets, nil
}

// findBudget looks up the budget for a (user, category, period) triple,
// returning nil when none exists.
func (s *FirestoreStore) findBudget(ctx context.Context, userID string, category model.Category, period model.BudgetPeriod) (*model.Budget, error) {
	iter := s.client.Collection(budgetsCollection).Query.
		Where("UserID", "==", userID).
		Where("Category", "==", string(category)).
		Where("Period", "==", string(period)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up budget: %w", err)
	}
	var budget model.Budget
	if err := doc.DataTo(&budget); err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	return &budget, nil
}

// Forecast model snapshots

func (s *FirestoreStore) SaveForecastModel(ctx context.Context, userID string, snapshot *forecast.Snapshot) error {
	_, err := s.client.Collection(modelsCollection).Doc(userID).Set(ctx, snapshot)
	return err
}

func (s *FirestoreStore) GetForecastModel(ctx context.Context, userID string) (*forecast.Snapshot, error) {
	doc, err := s.client.Collection(modelsCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, forecast.ErrModelNotFound
	}
	var snapshot forecast.Snapshot
	if err := doc.DataTo(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse forecast model: %w", err)
	}
	return &snapshot, nil
}

func (s *FirestoreStore) collectTransactions(ctx context.Context, query firestore.Query) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var transaction model.Transaction
		if err := doc.DataTo(&transaction); err != nil {
			return nil, fmt.Errorf("failed to parse transaction: %w", err)
		}
		transactions = append(transactions, &transaction)
	}
	return transactions, nil
}
