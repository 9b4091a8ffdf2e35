package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountTypeSummary is the per-type rollup within an account summary.
type AccountTypeSummary struct {
	Count        int32           `json:"count"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// AccountSummary aggregates the owner's active accounts.
type AccountSummary struct {
	TotalBalance decimal.Decimal                     `json:"totalBalance"`
	AccountCount int32                               `json:"accountCount"`
	ByType       map[AccountType]*AccountTypeSummary `json:"byType"`
}

// TransactionSummary aggregates the owner's transactions over a date range.
type TransactionSummary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	TransactionCount int64           `json:"transactionCount"`
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
}

// CategoryGroup is one category's slice of a by-category breakdown.
type CategoryGroup struct {
	Category         *Category       `json:"category"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int32           `json:"transactionCount"`
	Transactions     []*Transaction  `json:"transactions"`
}

// BudgetAlertType classifies how far a current budget's spend has progressed.
type BudgetAlertType string

const (
	BudgetAlertWarning    BudgetAlertType = "warning"
	BudgetAlertOverBudget BudgetAlertType = "over_budget"
)

// BudgetStatus is a budget with its derived spend figures attached.
type BudgetStatus struct {
	Budget          *Budget         `json:"budget"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

// BudgetAlert reports a current budget at or past a spend threshold.
type BudgetAlert struct {
	Budget          *Budget         `json:"budget"`
	AlertType       BudgetAlertType `json:"alertType"`
	Message         string          `json:"message"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	SpentPercentage decimal.Decimal `json:"spentPercentage"`
}
