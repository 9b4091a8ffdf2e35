package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerly/ledgerly-backend/internal/domain"
)

const budgetColumns = "id, user_id, category_id, amount, period, start_date, end_date, is_active, created_at, updated_at"

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create persists a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, amount, period, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+budgetColumns,
		budget.UserID, budget.CategoryID, amount, string(budget.Period),
		pgtype.Date{Time: budget.StartDate, Valid: true},
		pgtype.Date{Time: budget.EndDate, Valid: true},
		budget.IsActive)

	created, err := scanBudget(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrBudgetExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a budget by ID within the owner's scope
func (r *BudgetRepository) GetByID(userID int64, id int32) (*domain.Budget, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = $1 AND id = $2",
		userID, id)

	budget, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetAllByUser retrieves all budgets for a user
func (r *BudgetRepository) GetAllByUser(userID int64) ([]*domain.Budget, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = $1 ORDER BY start_date DESC, id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// ListCurrent retrieves the active budgets whose date range contains asOf
func (r *BudgetRepository) ListCurrent(userID int64, asOf time.Time) ([]*domain.Budget, error) {
	ctx := context.Background()
	day := pgtype.Date{Time: domain.DateOnly(asOf), Valid: true}
	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND is_active = true AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date DESC, id`,
		userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// Update modifies the budget's mutable fields
func (r *BudgetRepository) Update(userID int64, id int32, data *domain.UpdateBudgetData) (*domain.Budget, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE budgets
		SET amount = $3, period = $4, start_date = $5, end_date = $6, is_active = $7, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+budgetColumns,
		userID, id, amount, string(data.Period),
		pgtype.Date{Time: data.StartDate, Valid: true},
		pgtype.Date{Time: data.EndDate, Valid: true},
		data.IsActive)

	updated, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrBudgetExists
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a budget. Ledger history is untouched.
func (r *BudgetRepository) Delete(userID int64, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM budgets WHERE user_id = $1 AND id = $2", userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func collectBudgets(rows pgx.Rows) ([]*domain.Budget, error) {
	budgets := make([]*domain.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		budget    domain.Budget
		amount    pgtype.Numeric
		period    string
		startDate pgtype.Date
		endDate   pgtype.Date
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &amount,
		&period, &startDate, &endDate, &budget.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	budget.Amount = pgNumericToDecimal(amount)
	budget.Period = domain.BudgetPeriod(period)
	budget.StartDate = startDate.Time
	budget.EndDate = endDate.Time
	budget.CreatedAt = createdAt.Time
	budget.UpdatedAt = updatedAt.Time
	return &budget, nil
}
