package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerly/ledgerly-backend/internal/domain"
)

const categoryColumns = "id, user_id, name, color, description, is_active, created_at"

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create creates a new category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, color, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		category.UserID, category.Name, category.Color, category.Description, category.IsActive)

	created, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a category by ID within the owner's scope
func (r *CategoryRepository) GetByID(userID int64, id int32) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = $1 AND id = $2",
		userID, id)

	category, err := scanCategory(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// GetAllByUser retrieves the owner's categories ordered by name
func (r *CategoryRepository) GetAllByUser(userID int64) ([]*domain.Category, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = $1 ORDER BY name",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// GetPopular returns the owner's categories ordered by transaction count
func (r *CategoryRepository) GetPopular(userID int64, limit int) ([]*domain.PopularCategory, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.user_id, c.name, c.color, c.description, c.is_active, c.created_at,
		       COUNT(t.id) AS transaction_count
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY transaction_count DESC, c.name
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	popular := make([]*domain.PopularCategory, 0)
	for rows.Next() {
		var (
			category    domain.Category
			description pgtype.Text
			createdAt   pgtype.Timestamptz
			count       int64
		)
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.Color,
			&description, &category.IsActive, &createdAt, &count); err != nil {
			return nil, err
		}
		category.CreatedAt = createdAt.Time
		if description.Valid {
			category.Description = &description.String
		}
		popular = append(popular, &domain.PopularCategory{Category: &category, TransactionCount: count})
	}
	return popular, rows.Err()
}

// Update updates a category's mutable fields
func (r *CategoryRepository) Update(userID int64, id int32, data *domain.UpdateCategoryData) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $3, color = $4, description = $5, is_active = $6
		WHERE user_id = $1 AND id = $2
		RETURNING `+categoryColumns,
		userID, id, data.Name, data.Color, data.Description, data.IsActive)

	category, err := scanCategory(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, err
	}
	return category, nil
}

// Delete removes a category. Dependent transactions keep their rows; the
// category reference is nulled by the schema's ON DELETE SET NULL.
func (r *CategoryRepository) Delete(userID int64, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM categories WHERE user_id = $1 AND id = $2", userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		category    domain.Category
		description pgtype.Text
		createdAt   pgtype.Timestamptz
	)
	if err := row.Scan(&category.ID, &category.UserID, &category.Name, &category.Color,
		&description, &category.IsActive, &createdAt); err != nil {
		return nil, err
	}
	category.CreatedAt = createdAt.Time
	if description.Valid {
		category.Description = &description.String
	}
	return &category, nil
}
