package service

import (
	"errors"
	"testing"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/ledgerly/ledgerly-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestCreateCategory_DefaultColor(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	category, err := categoryService.CreateCategory(testUserID, CreateCategoryInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.Color != domain.DefaultCategoryColor {
		t.Errorf("Expected default color %s, got %s", domain.DefaultCategoryColor, category.Color)
	}
	if !category.IsActive {
		t.Error("Expected new category to be active")
	}
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	if _, err := categoryService.CreateCategory(testUserID, CreateCategoryInput{Name: "Groceries"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := categoryService.CreateCategory(testUserID, CreateCategoryInput{Name: "Groceries"})
	if !errors.Is(err, domain.ErrCategoryExists) {
		t.Fatalf("Expected ErrCategoryExists, got %v", err)
	}
}

func TestDeleteCategory_KeepsTransactions(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository(accountRepo)
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)
	ledger := NewLedgerService(transactionRepo, accountRepo, categoryRepo)

	accountRepo.AddAccount(&domain.Account{ID: 1, UserID: testUserID, Name: "Main", AccountType: domain.AccountTypeChecking, IsActive: true})
	category, err := categoryService.CreateCategory(testUserID, CreateCategoryInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	tx, err := ledger.CreateTransaction(testUserID, TransactionInput{
		AccountID: 1, CategoryID: &category.ID,
		Type:   domain.TransactionTypeExpense,
		Amount: decimal.RequireFromString("10.00"),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := categoryService.DeleteCategory(testUserID, category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	// The transaction survives the category deletion.
	if _, err := ledger.GetTransaction(testUserID, tx.ID); err != nil {
		t.Errorf("Expected transaction to survive category deletion, got %v", err)
	}
}

func TestDeleteCategory_ForeignOwnerNotFound(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	category, err := categoryService.CreateCategory(testUserID, CreateCategoryInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := categoryService.DeleteCategory(99, category.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("Expected ErrCategoryNotFound for foreign owner, got %v", err)
	}
}
