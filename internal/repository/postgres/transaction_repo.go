package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerly/ledgerly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const transactionColumns = "id, user_id, account_id, category_id, type, amount, description, date, to_account_id, created_at, updated_at"

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. Every mutation runs inside a single database transaction that
// locks the affected account rows, applies the balance deltas in place and
// mutates the transaction record, so readers never observe a record without
// its matching balance change.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// applyDeltas locks the delta accounts in ascending ID order (MergeDeltas
// guarantees the ordering; it prevents deadlocks between opposing transfers)
// and applies each delta to the persisted balance. Ownership is re-checked
// under the lock.
func applyDeltas(ctx context.Context, tx pgx.Tx, userID int64, deltas []domain.BalanceDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	ids := make([]int32, len(deltas))
	for i, d := range deltas {
		ids[i] = d.AccountID
	}

	rows, err := tx.Query(ctx,
		"SELECT id FROM accounts WHERE user_id = $1 AND id = ANY($2) ORDER BY id FOR UPDATE",
		userID, ids)
	if err != nil {
		return err
	}
	locked := 0
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		locked++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if locked != len(ids) {
		return domain.ErrAccountNotFound
	}

	for _, d := range deltas {
		delta, err := decimalToPgNumeric(d.Delta)
		if err != nil {
			return fmt.Errorf("invalid delta: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE accounts SET balance = balance + $3, updated_at = now()
			WHERE user_id = $1 AND id = $2`,
			userID, d.AccountID, delta); err != nil {
			return err
		}
	}
	return nil
}

// lockTransaction reads the stored row under FOR UPDATE so the reversal of
// its current effect can be derived safely: concurrent revisions of the same
// record serialize here, before any delta is computed.
func lockTransaction(ctx context.Context, tx pgx.Tx, userID int64, id int32) (*domain.Transaction, error) {
	row := tx.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 AND id = $2 FOR UPDATE",
		userID, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// inReconciliation runs fn inside one database transaction and maps commit
// failures to the integrity error: either the whole reconciliation is
// observed, or none of it.
func (r *TransactionRepository) inReconciliation(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReconciliationFailed, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReconciliationFailed, err)
	}
	return nil
}

// Create persists a transaction and applies its balance deltas atomically
func (r *TransactionRepository) Create(transaction *domain.Transaction, deltas []domain.BalanceDelta) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var created *domain.Transaction
	err = r.inReconciliation(ctx, func(tx pgx.Tx) error {
		if err := applyDeltas(ctx, tx, transaction.UserID, deltas); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO transactions (user_id, account_id, category_id, type, amount, description, date, to_account_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+transactionColumns,
			transaction.UserID, transaction.AccountID, transaction.CategoryID,
			string(transaction.Type), amount, transaction.Description,
			pgtype.Date{Time: transaction.Date, Valid: true}, transaction.ToAccountID)

		created, err = scanTransaction(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction by ID within the owner's scope
func (r *TransactionRepository) GetByID(userID int64, id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 AND id = $2",
		userID, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// List retrieves the owner's transactions, newest first, with every set
// filter combined with AND. Date bounds are inclusive.
func (r *TransactionRepository) List(userID int64, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	ctx := context.Background()

	query := "SELECT " + transactionColumns + " FROM transactions WHERE user_id = $1"
	args := []interface{}{userID}

	if filters != nil {
		if filters.Type != nil {
			args = append(args, string(*filters.Type))
			query += fmt.Sprintf(" AND type = $%d", len(args))
		}
		if filters.AccountID != nil {
			args = append(args, *filters.AccountID)
			query += fmt.Sprintf(" AND account_id = $%d", len(args))
		}
		if filters.CategoryID != nil {
			args = append(args, *filters.CategoryID)
			query += fmt.Sprintf(" AND category_id = $%d", len(args))
		}
		if filters.StartDate != nil {
			args = append(args, pgtype.Date{Time: *filters.StartDate, Valid: true})
			query += fmt.Sprintf(" AND date >= $%d", len(args))
		}
		if filters.EndDate != nil {
			args = append(args, pgtype.Date{Time: *filters.EndDate, Valid: true})
			query += fmt.Sprintf(" AND date <= $%d", len(args))
		}
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

// Update locks the stored row, reverses its current effect, applies the new
// values' effects and replaces the fields, all in the same database
// transaction. The reversal comes from the locked row rather than from the
// caller, so two racing revisions of one transaction cannot both reverse the
// same old values.
func (r *TransactionRepository) Update(userID int64, id int32, data *domain.UpdateTransactionData, effects []domain.BalanceDelta) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var updated *domain.Transaction
	err = r.inReconciliation(ctx, func(tx pgx.Tx) error {
		old, err := lockTransaction(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		deltas := domain.MergeDeltas(append(domain.ReverseDeltas(old.Effects()), effects...))
		if err := applyDeltas(ctx, tx, userID, deltas); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			UPDATE transactions
			SET account_id = $3, category_id = $4, type = $5, amount = $6,
			    description = $7, date = $8, to_account_id = $9, updated_at = now()
			WHERE user_id = $1 AND id = $2
			RETURNING `+transactionColumns,
			userID, id, data.AccountID, data.CategoryID, string(data.Type), amount,
			data.Description, pgtype.Date{Time: data.Date, Valid: true}, data.ToAccountID)

		var scanErr error
		updated, scanErr = scanTransaction(row)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete locks the stored row, reverses its current effect and removes the
// record in the same database transaction
func (r *TransactionRepository) Delete(userID int64, id int32) error {
	ctx := context.Background()

	return r.inReconciliation(ctx, func(tx pgx.Tx) error {
		old, err := lockTransaction(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		deltas := domain.MergeDeltas(domain.ReverseDeltas(old.Effects()))
		if err := applyDeltas(ctx, tx, userID, deltas); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			"DELETE FROM transactions WHERE user_id = $1 AND id = $2", userID, id)
		return err
	})
}

// SumExpensesByCategory sums expense amounts for a category with effective
// dates inside the range, bounds inclusive
func (r *TransactionRepository) SumExpensesByCategory(userID int64, categoryID int32, startDate, endDate time.Time) (decimal.Decimal, error) {
	ctx := context.Background()

	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND type = 'expense'
		  AND date >= $3 AND date <= $4`,
		userID, categoryID,
		pgtype.Date{Time: startDate, Valid: true},
		pgtype.Date{Time: endDate, Valid: true}).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumByTypeAndDateRange sums amounts of the given type within the range
func (r *TransactionRepository) SumByTypeAndDateRange(userID int64, txType domain.TransactionType, startDate, endDate time.Time) (decimal.Decimal, error) {
	ctx := context.Background()

	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND date >= $3 AND date <= $4`,
		userID, string(txType),
		pgtype.Date{Time: startDate, Valid: true},
		pgtype.Date{Time: endDate, Valid: true}).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// CountByDateRange counts the owner's transactions within the range
func (r *TransactionRepository) CountByDateRange(userID int64, startDate, endDate time.Time) (int64, error) {
	ctx := context.Background()

	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3`,
		userID,
		pgtype.Date{Time: startDate, Valid: true},
		pgtype.Date{Time: endDate, Valid: true}).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		transaction domain.Transaction
		categoryID  pgtype.Int4
		txType      string
		amount      pgtype.Numeric
		date        pgtype.Date
		toAccountID pgtype.Int4
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&transaction.ID, &transaction.UserID, &transaction.AccountID,
		&categoryID, &txType, &amount, &transaction.Description, &date,
		&toAccountID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	transaction.Type = domain.TransactionType(txType)
	transaction.Amount = pgNumericToDecimal(amount)
	transaction.Date = date.Time
	transaction.CreatedAt = createdAt.Time
	transaction.UpdatedAt = updatedAt.Time
	if categoryID.Valid {
		transaction.CategoryID = &categoryID.Int32
	}
	if toAccountID.Valid {
		transaction.ToAccountID = &toAccountID.Int32
	}
	return &transaction, nil
}
