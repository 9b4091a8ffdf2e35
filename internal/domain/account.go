package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCash       AccountType = "cash"
)

// ValidAccountType reports whether t is one of the closed set of account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit,
		AccountTypeInvestment, AccountTypeCash:
		return true
	}
	return false
}

// Account is a financial account owned by a single user. Its balance is
// maintained exclusively by the reconciliation engine: outside of account
// creation, nothing mutates the balance directly.
type Account struct {
	ID          int32           `json:"id"`
	UserID      int64           `json:"userId"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"isActive"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UpdateAccountData holds the mutable account fields. Balance is absent on
// purpose.
type UpdateAccountData struct {
	Name        string
	AccountType AccountType
	Currency    string
	Description *string
}

// AccountRepository defines owner-scoped account storage.
type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(userID int64, id int32) (*Account, error)
	GetAllByUser(userID int64, activeOnly bool) ([]*Account, error)
	Update(userID int64, id int32, data *UpdateAccountData) (*Account, error)
	SetActive(userID int64, id int32, active bool) (*Account, error)
}
