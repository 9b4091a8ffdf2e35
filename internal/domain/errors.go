package domain

import "errors"

// Domain errors
var (
	// Validation
	ErrInvalidAmount          = errors.New("amount must be a positive value")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidPeriod          = errors.New("invalid budget period")
	ErrInvalidDateRange       = errors.New("start date must not be after end date")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrInvalidCurrency        = errors.New("currency must be a 3-letter code")
	ErrDestinationRequired    = errors.New("transfer requires a destination account")
	ErrDestinationForbidden   = errors.New("destination account is only valid for transfers")
	ErrSameAccountTransfer    = errors.New("cannot transfer to the same account")

	// Not found (an owner mismatch is reported identically to absence)
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	// Conflict
	ErrAccountExists  = errors.New("account with this name already exists")
	ErrCategoryExists = errors.New("category with this name already exists")
	ErrBudgetExists   = errors.New("budget for this category and period already exists")

	// Integrity: an atomic reconciliation could not complete and was rolled back
	ErrReconciliationFailed = errors.New("balance reconciliation failed")
)

// Validation constants
const (
	MaxAccountNameLength  = 100
	MaxCategoryNameLength = 100
)
