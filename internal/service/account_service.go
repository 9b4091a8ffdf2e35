package service

import (
	"strings"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo domain.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name           string
	AccountType    domain.AccountType
	Currency       string
	InitialBalance decimal.Decimal
	Description    *string
}

// CreateAccount creates a new account. The initial balance is the only balance
// write that bypasses reconciliation; every later change flows through the
// ledger.
func (s *AccountService) CreateAccount(userID int64, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !domain.ValidAccountType(input.AccountType) {
		return nil, domain.ErrInvalidAccountType
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	return s.accountRepo.Create(&domain.Account{
		UserID:      userID,
		Name:        name,
		AccountType: input.AccountType,
		Balance:     input.InitialBalance,
		Currency:    currency,
		IsActive:    true,
		Description: input.Description,
	})
}

// GetAccounts retrieves the owner's accounts, optionally limited to active ones.
func (s *AccountService) GetAccounts(userID int64, activeOnly bool) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByUser(userID, activeOnly)
}

// GetAccountByID retrieves an account by ID within the owner's scope.
func (s *AccountService) GetAccountByID(userID int64, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(userID, id)
}

// UpdateAccount updates an account's name, type, currency and description.
// The balance is not an updatable field.
func (s *AccountService) UpdateAccount(userID int64, id int32, data *domain.UpdateAccountData) (*domain.Account, error) {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !domain.ValidAccountType(data.AccountType) {
		return nil, domain.ErrInvalidAccountType
	}
	currency := strings.ToUpper(strings.TrimSpace(data.Currency))
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	return s.accountRepo.Update(userID, id, &domain.UpdateAccountData{
		Name:        name,
		AccountType: data.AccountType,
		Currency:    currency,
		Description: data.Description,
	})
}

// DeactivateAccount clears the active flag. Accounts are never hard-deleted
// through the API: deactivation keeps transaction history intact.
func (s *AccountService) DeactivateAccount(userID int64, id int32) (*domain.Account, error) {
	return s.accountRepo.SetActive(userID, id, false)
}

// ActivateAccount sets the active flag.
func (s *AccountService) ActivateAccount(userID int64, id int32) (*domain.Account, error) {
	return s.accountRepo.SetActive(userID, id, true)
}
