package domain

import "time"

// DefaultCategoryColor is the hex color assigned when none is provided.
const DefaultCategoryColor = "#007bff"

// Category is a label for transactions. It carries no balance semantics.
type Category struct {
	ID          int32     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PopularCategory is a category annotated with its transaction count.
type PopularCategory struct {
	Category         *Category `json:"category"`
	TransactionCount int64     `json:"transactionCount"`
}

// UpdateCategoryData holds the mutable category fields.
type UpdateCategoryData struct {
	Name        string
	Color       string
	Description *string
	IsActive    bool
}

// CategoryRepository defines owner-scoped category storage. Delete nulls the
// category reference of dependent transactions instead of removing them.
type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(userID int64, id int32) (*Category, error)
	GetAllByUser(userID int64) ([]*Category, error)
	GetPopular(userID int64, limit int) ([]*PopularCategory, error)
	Update(userID int64, id int32, data *UpdateCategoryData) (*Category, error)
	Delete(userID int64, id int32) error
}
