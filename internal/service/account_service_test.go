package service

import (
	"errors"
	"testing"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/ledgerly/ledgerly-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestCreateAccount_Success(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := NewAccountService(accountRepo)

	account, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name:           "My Savings",
		AccountType:    domain.AccountTypeSavings,
		Currency:       "eur",
		InitialBalance: decimal.RequireFromString("1000.50"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if account.Name != "My Savings" {
		t.Errorf("Expected name 'My Savings', got %s", account.Name)
	}
	if account.AccountType != domain.AccountTypeSavings {
		t.Errorf("Expected type 'savings', got %s", account.AccountType)
	}
	if account.Currency != "EUR" {
		t.Errorf("Expected currency normalized to EUR, got %s", account.Currency)
	}
	if !account.Balance.Equal(decimal.RequireFromString("1000.50")) {
		t.Errorf("Expected balance 1000.50, got %s", account.Balance)
	}
	if !account.IsActive {
		t.Error("Expected new account to be active")
	}
}

func TestCreateAccount_DefaultCurrency(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := NewAccountService(accountRepo)

	account, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name:        "Wallet",
		AccountType: domain.AccountTypeCash,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if account.Currency != "USD" {
		t.Errorf("Expected default currency USD, got %s", account.Currency)
	}
}

func TestCreateAccount_EmptyName(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := NewAccountService(accountRepo)

	_, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name:        "   ",
		AccountType: domain.AccountTypeChecking,
	})
	if !errors.Is(err, domain.ErrNameRequired) {
		t.Fatalf("Expected ErrNameRequired, got %v", err)
	}
}

func TestCreateAccount_InvalidType(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := NewAccountService(accountRepo)

	_, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name:        "Crypto",
		AccountType: domain.AccountType("wallet"),
	})
	if !errors.Is(err, domain.ErrInvalidAccountType) {
		t.Fatalf("Expected ErrInvalidAccountType, got %v", err)
	}
}

func TestCreateAccount_DuplicateName(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := NewAccountService(accountRepo)

	if _, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name: "Main", AccountType: domain.AccountTypeChecking,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name: "Main", AccountType: domain.AccountTypeSavings,
	})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("Expected ErrAccountExists, got %v", err)
	}
}

func TestDeactivateAccount(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := NewAccountService(accountRepo)

	account, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name: "Main", AccountType: domain.AccountTypeChecking,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deactivated, err := accountService.DeactivateAccount(testUserID, account.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.IsActive {
		t.Error("Expected account inactive after deactivation")
	}

	// The record survives: deactivation is a logical toggle, not deletion.
	if _, err := accountService.GetAccountByID(testUserID, account.ID); err != nil {
		t.Errorf("Expected deactivated account still readable, got %v", err)
	}

	reactivated, err := accountService.ActivateAccount(testUserID, account.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !reactivated.IsActive {
		t.Error("Expected account active after reactivation")
	}
}

func TestUpdateAccount_ForeignOwnerNotFound(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	accountService := NewAccountService(accountRepo)

	account, err := accountService.CreateAccount(testUserID, CreateAccountInput{
		Name: "Main", AccountType: domain.AccountTypeChecking,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = accountService.UpdateAccount(99, account.ID, &domain.UpdateAccountData{
		Name: "Stolen", AccountType: domain.AccountTypeChecking, Currency: "USD",
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound for foreign owner, got %v", err)
	}
}
