package service

import (
	"testing"
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/ledgerly/ledgerly-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budgetFixture struct {
	svc             *BudgetService
	ledger          *LedgerService
	accountRepo     *testutil.MockAccountRepository
	categoryRepo    *testutil.MockCategoryRepository
	budgetRepo      *testutil.MockBudgetRepository
	transactionRepo *testutil.MockTransactionRepository
}

func newBudgetFixture(t *testing.T) *budgetFixture {
	t.Helper()
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository(accountRepo)
	categoryRepo := testutil.NewMockCategoryRepository()
	budgetRepo := testutil.NewMockBudgetRepository()

	accountRepo.AddAccount(&domain.Account{
		ID: 1, UserID: testUserID, Name: "Checking",
		AccountType: domain.AccountTypeChecking,
		Balance:     decimal.RequireFromString("10000.00"),
		Currency:    "USD", IsActive: true,
	})
	categoryRepo.AddCategory(&domain.Category{ID: 1, UserID: testUserID, Name: "Groceries", IsActive: true})

	return &budgetFixture{
		svc:             NewBudgetService(budgetRepo, categoryRepo, transactionRepo),
		ledger:          NewLedgerService(transactionRepo, accountRepo, categoryRepo),
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
	}
}

func (f *budgetFixture) spend(t *testing.T, amount string, date time.Time) {
	t.Helper()
	categoryID := int32(1)
	_, err := f.ledger.CreateTransaction(testUserID, TransactionInput{
		AccountID: 1, CategoryID: &categoryID,
		Type:   domain.TransactionTypeExpense,
		Amount: decimal.RequireFromString(amount),
		Date:   date,
	})
	require.NoError(t, err)
}

func (f *budgetFixture) budget(t *testing.T, amount string) *domain.Budget {
	t.Helper()
	budget, err := f.svc.CreateBudget(testUserID, BudgetInput{
		CategoryID: 1,
		Amount:     decimal.RequireFromString(amount),
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  dateAt(2025, time.June, 1),
		EndDate:    dateAt(2025, time.June, 30),
	})
	require.NoError(t, err)
	return budget
}

func TestSpent_WindowInclusive(t *testing.T) {
	f := newBudgetFixture(t)
	budget := f.budget(t, "400.00")

	f.spend(t, "10.00", dateAt(2025, time.May, 31))  // one day before: excluded
	f.spend(t, "20.00", dateAt(2025, time.June, 1))  // on start date: counted
	f.spend(t, "30.00", dateAt(2025, time.June, 30)) // on end date: counted
	f.spend(t, "40.00", dateAt(2025, time.July, 1))  // one day after: excluded

	spent, err := f.svc.Spent(budget)
	require.NoError(t, err)
	assert.Equal(t, "50.00", spent.StringFixed(2))
}

func TestSpent_IgnoresNonExpenseAndUncategorized(t *testing.T) {
	f := newBudgetFixture(t)
	budget := f.budget(t, "400.00")

	f.spend(t, "25.00", dateAt(2025, time.June, 10))

	// Income in the same category does not count.
	categoryID := int32(1)
	_, err := f.ledger.CreateTransaction(testUserID, TransactionInput{
		AccountID: 1, CategoryID: &categoryID,
		Type:   domain.TransactionTypeIncome,
		Amount: decimal.RequireFromString("500.00"),
		Date:   dateAt(2025, time.June, 10),
	})
	require.NoError(t, err)

	// An uncategorized expense never contributes to any budget.
	_, err = f.ledger.CreateTransaction(testUserID, TransactionInput{
		AccountID: 1,
		Type:      domain.TransactionTypeExpense,
		Amount:    decimal.RequireFromString("75.00"),
		Date:      dateAt(2025, time.June, 10),
	})
	require.NoError(t, err)

	spent, err := f.svc.Spent(budget)
	require.NoError(t, err)
	assert.Equal(t, "25.00", spent.StringFixed(2))
}

func TestRemaining_NegativeWhenOverBudget(t *testing.T) {
	f := newBudgetFixture(t)
	budget := f.budget(t, "100.00")

	f.spend(t, "160.00", dateAt(2025, time.June, 10))

	remaining, err := f.svc.Remaining(budget)
	require.NoError(t, err)
	assert.Equal(t, "-60.00", remaining.StringFixed(2))
}

func TestGetAlerts_ExactlyEightyPercentIsWarning(t *testing.T) {
	f := newBudgetFixture(t)
	f.budget(t, "400.00")
	f.spend(t, "320.00", dateAt(2025, time.June, 10))

	alerts, err := f.svc.GetAlerts(testUserID, dateAt(2025, time.June, 15))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.BudgetAlertWarning, alerts[0].AlertType)
	assert.Equal(t, "80.00", alerts[0].SpentPercentage.StringFixed(2))
	assert.Equal(t, "80% of budget used for Groceries", alerts[0].Message)
}

func TestGetAlerts_ExactlyHundredPercentIsOverBudget(t *testing.T) {
	f := newBudgetFixture(t)
	f.budget(t, "400.00")
	f.spend(t, "400.00", dateAt(2025, time.June, 10))

	alerts, err := f.svc.GetAlerts(testUserID, dateAt(2025, time.June, 15))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.BudgetAlertOverBudget, alerts[0].AlertType)
	assert.Equal(t, "100.00", alerts[0].SpentPercentage.StringFixed(2))
	assert.Equal(t, "Budget exceeded for Groceries", alerts[0].Message)
}

func TestGetAlerts_JustUnderEightyIsSilent(t *testing.T) {
	f := newBudgetFixture(t)
	f.budget(t, "400.00")
	// 319.99 / 400 = 79.9975% — rounds to 80.00 but classification uses the
	// exact value, so no alert is raised.
	f.spend(t, "319.99", dateAt(2025, time.June, 10))

	alerts, err := f.svc.GetAlerts(testUserID, dateAt(2025, time.June, 15))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestGetAlerts_SkipsNonCurrentBudgets(t *testing.T) {
	f := newBudgetFixture(t)
	budget := f.budget(t, "100.00")
	f.spend(t, "150.00", dateAt(2025, time.June, 10))

	// Outside the window: nothing evaluated.
	alerts, err := f.svc.GetAlerts(testUserID, dateAt(2025, time.July, 15))
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// Inactive budgets are never current.
	_, err = f.svc.UpdateBudget(testUserID, budget.ID, BudgetInput{
		CategoryID: budget.CategoryID,
		Amount:     budget.Amount,
		Period:     budget.Period,
		StartDate:  budget.StartDate,
		EndDate:    budget.EndDate,
	}, false)
	require.NoError(t, err)

	alerts, err = f.svc.GetAlerts(testUserID, dateAt(2025, time.June, 15))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestClassifyAlert_ZeroAmountBudget(t *testing.T) {
	pct := SpentPercentage(decimal.Zero, decimal.RequireFromString("50.00"))
	assert.True(t, pct.IsZero(), "amount <= 0 must yield 0%% instead of dividing by zero")

	_, ok := ClassifyAlert(pct)
	assert.False(t, ok)
}

func TestCreateBudget_Validation(t *testing.T) {
	f := newBudgetFixture(t)

	_, err := f.svc.CreateBudget(testUserID, BudgetInput{
		CategoryID: 1, Amount: decimal.Zero,
		Period:    domain.BudgetPeriodMonthly,
		StartDate: dateAt(2025, time.June, 1), EndDate: dateAt(2025, time.June, 30),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.CreateBudget(testUserID, BudgetInput{
		CategoryID: 1, Amount: decimal.RequireFromString("100.00"),
		Period:    domain.BudgetPeriod("daily"),
		StartDate: dateAt(2025, time.June, 1), EndDate: dateAt(2025, time.June, 30),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = f.svc.CreateBudget(testUserID, BudgetInput{
		CategoryID: 1, Amount: decimal.RequireFromString("100.00"),
		Period:    domain.BudgetPeriodMonthly,
		StartDate: dateAt(2025, time.June, 30), EndDate: dateAt(2025, time.June, 1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = f.svc.CreateBudget(testUserID, BudgetInput{
		CategoryID: 9, Amount: decimal.RequireFromString("100.00"),
		Period:    domain.BudgetPeriodMonthly,
		StartDate: dateAt(2025, time.June, 1), EndDate: dateAt(2025, time.June, 30),
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCreateBudget_DuplicateWindowConflicts(t *testing.T) {
	f := newBudgetFixture(t)
	f.budget(t, "400.00")

	_, err := f.svc.CreateBudget(testUserID, BudgetInput{
		CategoryID: 1,
		Amount:     decimal.RequireFromString("500.00"),
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  dateAt(2025, time.June, 1),
		EndDate:    dateAt(2025, time.June, 30),
	})
	assert.ErrorIs(t, err, domain.ErrBudgetExists)
}

func TestGetCurrentBudgets_AttachesDerivedSpend(t *testing.T) {
	f := newBudgetFixture(t)
	f.budget(t, "400.00")
	f.spend(t, "120.50", dateAt(2025, time.June, 10))

	statuses, err := f.svc.GetCurrentBudgets(testUserID, dateAt(2025, time.June, 15))
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "120.50", statuses[0].SpentAmount.StringFixed(2))
	assert.Equal(t, "279.50", statuses[0].RemainingAmount.StringFixed(2))
}
