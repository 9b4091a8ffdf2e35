package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerly/ledgerly-backend/internal/domain"
)

const accountColumns = "id, user_id, name, account_type, balance, currency, is_active, description, created_at, updated_at"

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()

	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (user_id, name, account_type, balance, currency, is_active, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+accountColumns,
		account.UserID, account.Name, string(account.AccountType), balance,
		account.Currency, account.IsActive, account.Description)

	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an account by ID within the owner's scope
func (r *AccountRepository) GetByID(userID int64, id int32) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = $1 AND id = $2",
		userID, id)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllByUser retrieves the owner's accounts, newest first
func (r *AccountRepository) GetAllByUser(userID int64, activeOnly bool) ([]*domain.Account, error) {
	ctx := context.Background()

	query := "SELECT " + accountColumns + " FROM accounts WHERE user_id = $1"
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update updates an account's mutable fields. The balance is owned by the
// reconciliation engine and is not touched here.
func (r *AccountRepository) Update(userID int64, id int32, data *domain.UpdateAccountData) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET name = $3, account_type = $4, currency = $5, description = $6, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+accountColumns,
		userID, id, data.Name, string(data.AccountType), data.Currency, data.Description)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, err
	}
	return account, nil
}

// SetActive toggles the active flag
func (r *AccountRepository) SetActive(userID int64, id int32, active bool) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts SET is_active = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+accountColumns,
		userID, id, active)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account     domain.Account
		accountType string
		balance     pgtype.Numeric
		currency    string
		description pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&account.ID, &account.UserID, &account.Name, &accountType,
		&balance, &currency, &account.IsActive, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	account.AccountType = domain.AccountType(accountType)
	account.Balance = pgNumericToDecimal(balance)
	account.Currency = strings.TrimSpace(currency)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time
	if description.Valid {
		account.Description = &description.String
	}
	return &account, nil
}
