package service

import (
	"strings"
	"time"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService is the balance reconciliation engine. It validates transaction
// intents, computes the signed balance deltas they imply, and hands record
// mutation plus deltas to the repository as one atomic unit. Reversals of a
// stored record's effect are derived by the store under its row lock, never
// from a value this layer read earlier. Reconciliation is never hidden in a
// persistence hook: the delta math lives in domain and is invoked explicitly
// here and in the store.
type LedgerService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository, categoryRepo domain.CategoryRepository) *LedgerService {
	return &LedgerService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
	}
}

// TransactionInput holds the caller-supplied field values for a transaction.
type TransactionInput struct {
	AccountID   int32
	CategoryID  *int32
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	ToAccountID *int32
}

// validate checks the input against the acting owner before any effect is
// applied. No state is touched when validation fails.
func (s *LedgerService) validate(userID int64, input *TransactionInput) error {
	if !domain.ValidTransactionType(input.Type) {
		return domain.ErrInvalidTransactionType
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}

	if input.Type == domain.TransactionTypeTransfer {
		if input.ToAccountID == nil {
			return domain.ErrDestinationRequired
		}
		if *input.ToAccountID == input.AccountID {
			return domain.ErrSameAccountTransfer
		}
	} else if input.ToAccountID != nil {
		return domain.ErrDestinationForbidden
	}

	if _, err := s.accountRepo.GetByID(userID, input.AccountID); err != nil {
		return err
	}
	if input.ToAccountID != nil {
		if _, err := s.accountRepo.GetByID(userID, *input.ToAccountID); err != nil {
			return err
		}
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(userID, *input.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// CreateTransaction validates the intent, computes its balance effects and
// persists record plus effects atomically.
func (s *LedgerService) CreateTransaction(userID int64, input TransactionInput) (*domain.Transaction, error) {
	if err := s.validate(userID, &input); err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		UserID:      userID,
		AccountID:   input.AccountID,
		CategoryID:  input.CategoryID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
		ToAccountID: input.ToAccountID,
	}

	deltas := domain.MergeDeltas(transaction.Effects())
	return s.transactionRepo.Create(transaction, deltas)
}

// UpdateTransaction replaces a transaction's fields. Only the new values'
// effects are handed to the store; the store locks the stored record and
// reverses its current effect under that lock, so a revision based on a stale
// read cannot skew the balances.
func (s *LedgerService) UpdateTransaction(userID int64, id int32, input TransactionInput) (*domain.Transaction, error) {
	if err := s.validate(userID, &input); err != nil {
		return nil, err
	}

	next := &domain.Transaction{
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		ToAccountID: input.ToAccountID,
	}

	return s.transactionRepo.Update(userID, id, &domain.UpdateTransactionData{
		AccountID:   input.AccountID,
		CategoryID:  input.CategoryID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		Date:        input.Date,
		ToAccountID: input.ToAccountID,
	}, next.Effects())
}

// DeleteTransaction reverses the stored values' effect and removes the record
// atomically, restoring the pre-creation balances exactly.
func (s *LedgerService) DeleteTransaction(userID int64, id int32) error {
	return s.transactionRepo.Delete(userID, id)
}

// GetTransaction retrieves a transaction by ID within the owner's scope.
func (s *LedgerService) GetTransaction(userID int64, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}

// ListTransactions lists the owner's transactions, newest first, with optional
// type/account/category/date-range filters combined with AND.
func (s *LedgerService) ListTransactions(userID int64, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	return s.transactionRepo.List(userID, filters)
}
