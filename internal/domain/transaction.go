package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// ValidTransactionType reports whether t is one of the closed set of types.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction is a ledger entry against one account, or two for transfers.
// Amount is always positive; direction is encoded by Type. ToAccountID is set
// if and only if Type is transfer.
type Transaction struct {
	ID          int32           `json:"id"`
	UserID      int64           `json:"userId"`
	AccountID   int32           `json:"accountId"`
	CategoryID  *int32          `json:"categoryId,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	ToAccountID *int32          `json:"toAccountId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UpdateTransactionData holds the replacement field values for an update.
type UpdateTransactionData struct {
	AccountID   int32
	CategoryID  *int32
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	ToAccountID *int32
}

// BalanceDelta is the signed effect a transaction applies to a single account.
type BalanceDelta struct {
	AccountID int32
	Delta     decimal.Decimal
}

// Effects returns the balance deltas the transaction applies:
// income adds to the account, expense subtracts, transfer subtracts from the
// source and adds to the destination.
func (t *Transaction) Effects() []BalanceDelta {
	switch t.Type {
	case TransactionTypeIncome:
		return []BalanceDelta{{AccountID: t.AccountID, Delta: t.Amount}}
	case TransactionTypeExpense:
		return []BalanceDelta{{AccountID: t.AccountID, Delta: t.Amount.Neg()}}
	case TransactionTypeTransfer:
		deltas := []BalanceDelta{{AccountID: t.AccountID, Delta: t.Amount.Neg()}}
		if t.ToAccountID != nil {
			deltas = append(deltas, BalanceDelta{AccountID: *t.ToAccountID, Delta: t.Amount})
		}
		return deltas
	}
	return nil
}

// ReverseDeltas negates every delta, undoing the effect it describes.
func ReverseDeltas(deltas []BalanceDelta) []BalanceDelta {
	reversed := make([]BalanceDelta, len(deltas))
	for i, d := range deltas {
		reversed[i] = BalanceDelta{AccountID: d.AccountID, Delta: d.Delta.Neg()}
	}
	return reversed
}

// MergeDeltas sums deltas per account and returns them in ascending account-ID
// order. Zero-sum entries are kept: they still pin the account's row lock so an
// update that lands back on the same balance serializes like any other.
func MergeDeltas(deltas []BalanceDelta) []BalanceDelta {
	byAccount := make(map[int32]decimal.Decimal)
	for _, d := range deltas {
		byAccount[d.AccountID] = byAccount[d.AccountID].Add(d.Delta)
	}

	merged := make([]BalanceDelta, 0, len(byAccount))
	for id, delta := range byAccount {
		merged = append(merged, BalanceDelta{AccountID: id, Delta: delta})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].AccountID < merged[j].AccountID })
	return merged
}

// TransactionFilters narrow a listing; all set predicates combine with AND.
// Date bounds are inclusive and compare on the date portion only.
type TransactionFilters struct {
	Type       *TransactionType
	AccountID  *int32
	CategoryID *int32
	StartDate  *time.Time
	EndDate    *time.Time
}

// TransactionRepository is the ledger store. Create, Update and Delete apply
// balance deltas and the record mutation as one atomic unit: either both are
// committed or neither is observed. Update receives only the new values'
// effects; the store locks the stored row and derives the reversal of its
// current effect itself, so a caller holding a stale view of the record can
// never reverse it twice. Delete derives the reversal the same way.
type TransactionRepository interface {
	Create(transaction *Transaction, deltas []BalanceDelta) (*Transaction, error)
	GetByID(userID int64, id int32) (*Transaction, error)
	List(userID int64, filters *TransactionFilters) ([]*Transaction, error)
	Update(userID int64, id int32, data *UpdateTransactionData, effects []BalanceDelta) (*Transaction, error)
	Delete(userID int64, id int32) error

	SumExpensesByCategory(userID int64, categoryID int32, startDate, endDate time.Time) (decimal.Decimal, error)
	SumByTypeAndDateRange(userID int64, txType TransactionType, startDate, endDate time.Time) (decimal.Decimal, error)
	CountByDateRange(userID int64, startDate, endDate time.Time) (int64, error)
}
