package store

import (
	"context"
	"sync"
	"time"

	"github.com/finsight/backend/internal/forecast"
	"github.com/finsight/backend/internal/model"
)

// MemoryStore implements Store with in-memory maps. It backs local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]*model.Transaction
	budgets      map[string]*model.Budget
	snapshots    map[string]*forecast.Snapshot

	// now is stubbed in tests to pin the trailing budget windows.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*model.Transaction),
		budgets:      make(map[string]*model.Budget),
		snapshots:    make(map[string]*forecast.Snapshot),
		now:          time.Now,
	}
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	transaction.ID = ensureID(transaction.ID)
	now := m.now()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	m.transactions[transaction.ID] = transaction
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	transaction, ok := m.transactions[transactionID]
	if !ok {
		return nil, ErrNotFound
	}
	return transaction, nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, transaction *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[transaction.ID]; !ok {
		return ErrNotFound
	}
	transaction.UpdatedAt = m.now()
	m.transactions[transaction.ID] = transaction
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[transactionID]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, transactionID)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, page, limit int, filter *model.TransactionFilter) (*model.TransactionPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*model.Transaction
	for _, t := range m.transactions {
		if t.UserID != userID {
			continue
		}
		if matchesFilter(t, filter) {
			matched = append(matched, t)
		}
	}
	return paginate(matched, page, limit), nil
}

func (m *MemoryStore) GetUserStatistics(ctx context.Context, userID string, startDate, endDate *time.Time) (*model.UserStatistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filter := &model.TransactionFilter{StartDate: startDate, EndDate: endDate}
	var matched []*model.Transaction
	for _, t := range m.transactions {
		if t.UserID != userID {
			continue
		}
		if matchesFilter(t, filter) {
			matched = append(matched, t)
		}
	}
	return statisticsFrom(matched), nil
}

// Budget operations

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.budgets {
		if existing.UserID == budget.UserID &&
			existing.Category == budget.Category &&
			existing.Period == budget.Period {
			return ErrDuplicateBudget
		}
	}

	budget.ID = ensureID(budget.ID)
	now := m.now()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budget, ok := m.budgets[budgetID]
	if !ok {
		return nil, ErrNotFound
	}
	return budget, nil
}

func (m *MemoryStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budget.ID]; !ok {
		return ErrNotFound
	}
	for _, existing := range m.budgets {
		if existing.ID != budget.ID &&
			existing.UserID == budget.UserID &&
			existing.Category == budget.Category &&
			existing.Period == budget.Period {
			return ErrDuplicateBudget
		}
	}
	budget.UpdatedAt = m.now()
	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budgetID]; !ok {
		return ErrNotFound
	}
	delete(m.budgets, budgetID)
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string, period model.BudgetPeriod) ([]*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	budgets := []*model.Budget{}
	var userTransactions []*model.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID {
			userTransactions = append(userTransactions, t)
		}
	}
	for _, b := range m.budgets {
		if b.UserID == userID && b.Period == period {
			// Copy so derived fields never leak back into stored state.
			budget := *b
			budgets = append(budgets, &budget)
		}
	}
	applyBudgetUsage(budgets, userTransactions, m.now())
	sortBudgets(budgets)
	return budgets, nil
}

// Forecast model snapshots

func (m *MemoryStore) SaveForecastModel(ctx context.Context, userID string, snapshot *forecast.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[userID] = snapshot
	return nil
}

func (m *MemoryStore) GetForecastModel(ctx context.Context, userID string) (*forecast.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, ok := m.snapshots[userID]
	if !ok {
		return nil, forecast.ErrModelNotFound
	}
	return snapshot, nil
}
