package testutil

import (
	"sort"
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockAccountRepository is an in-memory implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	NextID   int32
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		NextID:   1,
	}
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	if account.ID == 0 {
		account.ID = m.NextID
	}
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
	m.Accounts[account.ID] = account
}

// Create creates a new account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	for _, existing := range m.Accounts {
		if existing.UserID == account.UserID && existing.Name == account.Name {
			return nil, domain.ErrAccountExists
		}
	}
	account.ID = m.NextID
	m.NextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account by ID within the owner's scope
func (m *MockAccountRepository) GetByID(userID int64, id int32) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// GetAllByUser retrieves the owner's accounts
func (m *MockAccountRepository) GetAllByUser(userID int64, activeOnly bool) ([]*domain.Account, error) {
	result := make([]*domain.Account, 0)
	for _, account := range m.Accounts {
		if account.UserID != userID {
			continue
		}
		if activeOnly && !account.IsActive {
			continue
		}
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates an account's mutable fields
func (m *MockAccountRepository) Update(userID int64, id int32, data *domain.UpdateAccountData) (*domain.Account, error) {
	account, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	account.Name = data.Name
	account.AccountType = data.AccountType
	account.Currency = data.Currency
	account.Description = data.Description
	account.UpdatedAt = time.Now()
	return account, nil
}

// SetActive toggles the active flag
func (m *MockAccountRepository) SetActive(userID int64, id int32, active bool) (*domain.Account, error) {
	account, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	account.IsActive = active
	account.UpdatedAt = time.Now()
	return account, nil
}

// MockCategoryRepository is an in-memory implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	if category.ID == 0 {
		category.ID = m.NextID
	}
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	for _, existing := range m.Categories {
		if existing.UserID == category.UserID && existing.Name == category.Name {
			return nil, domain.ErrCategoryExists
		}
	}
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID within the owner's scope
func (m *MockCategoryRepository) GetByID(userID int64, id int32) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetAllByUser retrieves the owner's categories
func (m *MockCategoryRepository) GetAllByUser(userID int64) ([]*domain.Category, error) {
	result := make([]*domain.Category, 0)
	for _, category := range m.Categories {
		if category.UserID == userID {
			result = append(result, category)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// GetPopular returns categories ordered by transaction count; the mock has no
// transactions, so it returns all with zero counts.
func (m *MockCategoryRepository) GetPopular(userID int64, limit int) ([]*domain.PopularCategory, error) {
	categories, _ := m.GetAllByUser(userID)
	if len(categories) > limit {
		categories = categories[:limit]
	}
	result := make([]*domain.PopularCategory, len(categories))
	for i, category := range categories {
		result[i] = &domain.PopularCategory{Category: category}
	}
	return result, nil
}

// Update updates a category's mutable fields
func (m *MockCategoryRepository) Update(userID int64, id int32, data *domain.UpdateCategoryData) (*domain.Category, error) {
	category, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	for _, existing := range m.Categories {
		if existing.ID != id && existing.UserID == userID && existing.Name == data.Name {
			return nil, domain.ErrCategoryExists
		}
	}
	category.Name = data.Name
	category.Color = data.Color
	category.Description = data.Description
	category.IsActive = data.IsActive
	return category, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(userID int64, id int32) error {
	if _, err := m.GetByID(userID, id); err != nil {
		return err
	}
	delete(m.Categories, id)
	return nil
}

// MockTransactionRepository is an in-memory ledger store. Mutations apply
// balance deltas against the linked MockAccountRepository the way the
// Postgres repository applies them inside one database transaction, so tests
// can assert balance invariants end to end.
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	AccountRepo  *MockAccountRepository
	NextID       int32

	// FailNextMutation makes the next Create/Update/Delete fail before any
	// delta is applied, simulating a store-level rollback.
	FailNextMutation error
}

// NewMockTransactionRepository creates a MockTransactionRepository sharing
// account state with accountRepo.
func NewMockTransactionRepository(accountRepo *MockAccountRepository) *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		AccountRepo:  accountRepo,
		NextID:       1,
	}
}

func (m *MockTransactionRepository) takeFailure() error {
	err := m.FailNextMutation
	m.FailNextMutation = nil
	return err
}

func (m *MockTransactionRepository) applyDeltas(userID int64, deltas []domain.BalanceDelta) error {
	// Validate every account first; all-or-nothing like the real store.
	for _, d := range deltas {
		if _, err := m.AccountRepo.GetByID(userID, d.AccountID); err != nil {
			return err
		}
	}
	for _, d := range deltas {
		account := m.AccountRepo.Accounts[d.AccountID]
		account.Balance = account.Balance.Add(d.Delta)
	}
	return nil
}

// Create persists a transaction and applies its deltas
func (m *MockTransactionRepository) Create(transaction *domain.Transaction, deltas []domain.BalanceDelta) (*domain.Transaction, error) {
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	if err := m.applyDeltas(transaction.UserID, deltas); err != nil {
		return nil, err
	}
	transaction.ID = m.NextID
	m.NextID++
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction by ID within the owner's scope. Like the
// real store it hands back a detached copy, not the stored record.
func (m *MockTransactionRepository) GetByID(userID int64, id int32) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *transaction
	return &clone, nil
}

// List lists the owner's transactions applying the filters
func (m *MockTransactionRepository) List(userID int64, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	result := make([]*domain.Transaction, 0)
	for _, tx := range m.Transactions {
		if tx.UserID != userID || !matches(tx, filters) {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func matches(tx *domain.Transaction, filters *domain.TransactionFilters) bool {
	if filters == nil {
		return true
	}
	if filters.Type != nil && tx.Type != *filters.Type {
		return false
	}
	if filters.AccountID != nil && tx.AccountID != *filters.AccountID {
		return false
	}
	if filters.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *filters.CategoryID) {
		return false
	}
	day := domain.DateOnly(tx.Date)
	if filters.StartDate != nil && day.Before(domain.DateOnly(*filters.StartDate)) {
		return false
	}
	if filters.EndDate != nil && day.After(domain.DateOnly(*filters.EndDate)) {
		return false
	}
	return true
}

// Update replaces a transaction's fields. The reversal is derived from the
// stored record, like the Postgres store derives it from the locked row, so a
// caller holding a stale view cannot reverse it twice.
func (m *MockTransactionRepository) Update(userID int64, id int32, data *domain.UpdateTransactionData, effects []domain.BalanceDelta) (*domain.Transaction, error) {
	stored, ok := m.Transactions[id]
	if !ok || stored.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	deltas := domain.MergeDeltas(append(domain.ReverseDeltas(stored.Effects()), effects...))
	if err := m.applyDeltas(userID, deltas); err != nil {
		return nil, err
	}
	stored.AccountID = data.AccountID
	stored.CategoryID = data.CategoryID
	stored.Type = data.Type
	stored.Amount = data.Amount
	stored.Description = data.Description
	stored.Date = data.Date
	stored.ToAccountID = data.ToAccountID
	stored.UpdatedAt = time.Now()
	clone := *stored
	return &clone, nil
}

// Delete removes a transaction, reversing the stored record's effect
func (m *MockTransactionRepository) Delete(userID int64, id int32) error {
	stored, ok := m.Transactions[id]
	if !ok || stored.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	if err := m.takeFailure(); err != nil {
		return err
	}
	deltas := domain.MergeDeltas(domain.ReverseDeltas(stored.Effects()))
	if err := m.applyDeltas(userID, deltas); err != nil {
		return err
	}
	delete(m.Transactions, id)
	return nil
}

// SumExpensesByCategory sums expense amounts for a category within the range
func (m *MockTransactionRepository) SumExpensesByCategory(userID int64, categoryID int32, startDate, endDate time.Time) (decimal.Decimal, error) {
	expense := domain.TransactionTypeExpense
	transactions, _ := m.List(userID, &domain.TransactionFilters{
		Type:       &expense,
		CategoryID: &categoryID,
		StartDate:  &startDate,
		EndDate:    &endDate,
	})
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// SumByTypeAndDateRange sums amounts of the given type within the range
func (m *MockTransactionRepository) SumByTypeAndDateRange(userID int64, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	transactions, _ := m.List(userID, &domain.TransactionFilters{
		Type:      &txType,
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// CountByDateRange counts transactions within the range
func (m *MockTransactionRepository) CountByDateRange(userID int64, startDate, endDate time.Time) (int64, error) {
	transactions, _ := m.List(userID, &domain.TransactionFilters{
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	return int64(len(transactions)), nil
}

// MockBudgetRepository is an in-memory implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	for _, existing := range m.Budgets {
		if existing.UserID == budget.UserID && existing.CategoryID == budget.CategoryID &&
			existing.StartDate.Equal(budget.StartDate) && existing.EndDate.Equal(budget.EndDate) {
			return nil, domain.ErrBudgetExists
		}
	}
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by ID within the owner's scope
func (m *MockBudgetRepository) GetByID(userID int64, id int32) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// GetAllByUser retrieves the owner's budgets
func (m *MockBudgetRepository) GetAllByUser(userID int64) ([]*domain.Budget, error) {
	result := make([]*domain.Budget, 0)
	for _, budget := range m.Budgets {
		if budget.UserID == userID {
			result = append(result, budget)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListCurrent retrieves active budgets whose window contains asOf
func (m *MockBudgetRepository) ListCurrent(userID int64, asOf time.Time) ([]*domain.Budget, error) {
	budgets, _ := m.GetAllByUser(userID)
	result := make([]*domain.Budget, 0)
	for _, budget := range budgets {
		if budget.IsCurrent(asOf) {
			result = append(result, budget)
		}
	}
	return result, nil
}

// Update updates a budget's mutable fields
func (m *MockBudgetRepository) Update(userID int64, id int32, data *domain.UpdateBudgetData) (*domain.Budget, error) {
	budget, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	budget.Amount = data.Amount
	budget.Period = data.Period
	budget.StartDate = data.StartDate
	budget.EndDate = data.EndDate
	budget.IsActive = data.IsActive
	budget.UpdatedAt = time.Now()
	return budget, nil
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(userID int64, id int32) error {
	if _, err := m.GetByID(userID, id); err != nil {
		return err
	}
	delete(m.Budgets, id)
	return nil
}
