package service

import (
	"testing"
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/ledgerly/ledgerly-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newSummaryFixture() (*SummaryService, *LedgerService, *testutil.MockAccountRepository, *testutil.MockCategoryRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository(accountRepo)
	categoryRepo := testutil.NewMockCategoryRepository()
	return NewSummaryService(accountRepo, categoryRepo, transactionRepo),
		NewLedgerService(transactionRepo, accountRepo, categoryRepo),
		accountRepo, categoryRepo
}

func TestGetAccountSummary_GroupsByType(t *testing.T) {
	svc, _, accountRepo, _ := newSummaryFixture()
	accountRepo.AddAccount(&domain.Account{ID: 1, UserID: testUserID, Name: "Main", AccountType: domain.AccountTypeChecking, Balance: decimal.RequireFromString("1500.00"), IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 2, UserID: testUserID, Name: "Rainy day", AccountType: domain.AccountTypeSavings, Balance: decimal.RequireFromString("3000.00"), IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 3, UserID: testUserID, Name: "Old", AccountType: domain.AccountTypeChecking, Balance: decimal.RequireFromString("99.00"), IsActive: false})
	accountRepo.AddAccount(&domain.Account{ID: 4, UserID:7, Name: "Foreign", AccountType: domain.AccountTypeCash, Balance: decimal.RequireFromString("500.00"), IsActive: true})

	summary, err := svc.GetAccountSummary(testUserID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.AccountCount != 2 {
		t.Errorf("Expected 2 active accounts, got %d", summary.AccountCount)
	}
	if summary.TotalBalance.StringFixed(2) != "4500.00" {
		t.Errorf("Expected total 4500.00, got %s", summary.TotalBalance.StringFixed(2))
	}
	checking := summary.ByType[domain.AccountTypeChecking]
	if checking == nil || checking.Count != 1 || checking.TotalBalance.StringFixed(2) != "1500.00" {
		t.Errorf("Unexpected checking rollup: %+v", checking)
	}
	if _, ok := summary.ByType[domain.AccountTypeCash]; ok {
		t.Error("Expected other owners' accounts to be excluded")
	}
}

func TestGetTransactionSummary(t *testing.T) {
	svc, ledger, accountRepo, _ := newSummaryFixture()
	accountRepo.AddAccount(&domain.Account{ID: 1, UserID: testUserID, Name: "Main", AccountType: domain.AccountTypeChecking, Balance: decimal.Zero, IsActive: true})
	accountRepo.AddAccount(&domain.Account{ID: 2, UserID: testUserID, Name: "Side", AccountType: domain.AccountTypeSavings, Balance: decimal.Zero, IsActive: true})

	to := int32(2)
	seed := []TransactionInput{
		{AccountID: 1, Type: domain.TransactionTypeIncome, Amount: decimal.RequireFromString("5000.00"), Date: dateAt(2025, time.June, 1)},
		{AccountID: 1, Type: domain.TransactionTypeExpense, Amount: decimal.RequireFromString("120.50"), Date: dateAt(2025, time.June, 2)},
		{AccountID: 1, Type: domain.TransactionTypeTransfer, Amount: decimal.RequireFromString("1000.00"), Date: dateAt(2025, time.June, 3), ToAccountID: &to},
		{AccountID: 1, Type: domain.TransactionTypeExpense, Amount: decimal.RequireFromString("40.00"), Date: dateAt(2025, time.July, 2)},
	}
	for _, input := range seed {
		if _, err := ledger.CreateTransaction(testUserID, input); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	summary, err := svc.GetTransactionSummary(testUserID, dateAt(2025, time.June, 1), dateAt(2025, time.June, 30))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.TotalIncome.StringFixed(2) != "5000.00" {
		t.Errorf("Expected income 5000.00, got %s", summary.TotalIncome.StringFixed(2))
	}
	if summary.TotalExpenses.StringFixed(2) != "120.50" {
		t.Errorf("Expected expenses 120.50, got %s", summary.TotalExpenses.StringFixed(2))
	}
	if summary.NetAmount.StringFixed(2) != "4879.50" {
		t.Errorf("Expected net 4879.50, got %s", summary.NetAmount.StringFixed(2))
	}
	// Transfers count as transactions in the period even though they are
	// neither income nor expense.
	if summary.TransactionCount != 3 {
		t.Errorf("Expected 3 transactions in June, got %d", summary.TransactionCount)
	}
}

func TestGetTransactionsByCategory_ExcludesUncategorized(t *testing.T) {
	svc, ledger, accountRepo, categoryRepo := newSummaryFixture()
	accountRepo.AddAccount(&domain.Account{ID: 1, UserID: testUserID, Name: "Main", AccountType: domain.AccountTypeChecking, Balance: decimal.Zero, IsActive: true})
	categoryRepo.AddCategory(&domain.Category{ID: 1, UserID: testUserID, Name: "Groceries", IsActive: true})
	categoryRepo.AddCategory(&domain.Category{ID: 2, UserID: testUserID, Name: "Transport", IsActive: true})

	groceries, transport := int32(1), int32(2)
	seed := []TransactionInput{
		{AccountID: 1, CategoryID: &groceries, Type: domain.TransactionTypeExpense, Amount: decimal.RequireFromString("30.00"), Date: dateAt(2025, time.June, 1)},
		{AccountID: 1, CategoryID: &groceries, Type: domain.TransactionTypeExpense, Amount: decimal.RequireFromString("20.00"), Date: dateAt(2025, time.June, 2)},
		{AccountID: 1, CategoryID: &transport, Type: domain.TransactionTypeExpense, Amount: decimal.RequireFromString("15.00"), Date: dateAt(2025, time.June, 3)},
		{AccountID: 1, Type: domain.TransactionTypeExpense, Amount: decimal.RequireFromString("99.00"), Date: dateAt(2025, time.June, 4)},
	}
	for _, input := range seed {
		if _, err := ledger.CreateTransaction(testUserID, input); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	groups, err := svc.GetTransactionsByCategory(testUserID, dateAt(2025, time.June, 1), dateAt(2025, time.June, 30))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}

	byName := make(map[string]*domain.CategoryGroup)
	for _, group := range groups {
		byName[group.Category.Name] = group
	}
	g := byName["Groceries"]
	if g == nil || g.TransactionCount != 2 || g.TotalAmount.StringFixed(2) != "50.00" {
		t.Errorf("Unexpected Groceries group: %+v", g)
	}
	if len(g.Transactions) != 2 {
		t.Errorf("Expected member transactions carried, got %d", len(g.Transactions))
	}
}

func TestDefaultPeriod(t *testing.T) {
	now := time.Date(2025, time.June, 17, 15, 4, 5, 0, time.UTC)
	start, end := DefaultPeriod(now)
	if !start.Equal(dateAt(2025, time.June, 1)) {
		t.Errorf("Expected first of month, got %s", start)
	}
	if !end.Equal(dateAt(2025, time.June, 17)) {
		t.Errorf("Expected today, got %s", end)
	}
}
