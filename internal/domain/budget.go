package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// ValidBudgetPeriod reports whether p is one of the closed set of periods.
func ValidBudgetPeriod(p BudgetPeriod) bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

// Budget is a spending limit for a category over an explicit date range.
// The period tag is informational; it does not derive the dates. Spend against
// the budget is always recomputed from the ledger, never stored.
type Budget struct {
	ID         int32           `json:"id"`
	UserID     int64           `json:"userId"`
	CategoryID int32           `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	Period     BudgetPeriod    `json:"period"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// IsCurrent reports whether the budget is active and its date range contains
// asOf (date portion, bounds inclusive).
func (b *Budget) IsCurrent(asOf time.Time) bool {
	day := DateOnly(asOf)
	return b.IsActive && !day.Before(DateOnly(b.StartDate)) && !day.After(DateOnly(b.EndDate))
}

// DateOnly strips the time-of-day portion of t in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UpdateBudgetData holds the mutable budget fields.
type UpdateBudgetData struct {
	Amount    decimal.Decimal
	Period    BudgetPeriod
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
}

// BudgetRepository defines owner-scoped budget storage. A budget is unique per
// (owner, category, start date, end date).
type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(userID int64, id int32) (*Budget, error)
	GetAllByUser(userID int64) ([]*Budget, error)
	ListCurrent(userID int64, asOf time.Time) ([]*Budget, error)
	Update(userID int64, id int32, data *UpdateBudgetData) (*Budget, error)
	Delete(userID int64, id int32) error
}
