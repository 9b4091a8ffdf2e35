package service

import (
	"strings"

	"github.com/ledgerly/ledgerly-backend/internal/domain"
)

// PopularCategoryLimit caps the popular-categories listing.
const PopularCategoryLimit = 10

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	Name        string
	Color       string
	Description *string
}

// CreateCategory creates a new category with a default color when none is given.
func (s *CategoryService) CreateCategory(userID int64, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = domain.DefaultCategoryColor
	}

	return s.categoryRepo.Create(&domain.Category{
		UserID:      userID,
		Name:        name,
		Color:       color,
		Description: input.Description,
		IsActive:    true,
	})
}

// GetCategories retrieves all of the owner's categories.
func (s *CategoryService) GetCategories(userID int64) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByUser(userID)
}

// GetPopularCategories returns the owner's most used categories.
func (s *CategoryService) GetPopularCategories(userID int64) ([]*domain.PopularCategory, error) {
	return s.categoryRepo.GetPopular(userID, PopularCategoryLimit)
}

// UpdateCategory updates a category's fields.
func (s *CategoryService) UpdateCategory(userID int64, id int32, data *domain.UpdateCategoryData) (*domain.Category, error) {
	name := strings.TrimSpace(data.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	color := strings.TrimSpace(data.Color)
	if color == "" {
		color = domain.DefaultCategoryColor
	}

	return s.categoryRepo.Update(userID, id, &domain.UpdateCategoryData{
		Name:        name,
		Color:       color,
		Description: data.Description,
		IsActive:    data.IsActive,
	})
}

// DeleteCategory removes a category. Dependent transactions keep their history
// with a nulled category reference; they are never deleted alongside.
func (s *CategoryService) DeleteCategory(userID int64, id int32) error {
	return s.categoryRepo.Delete(userID, id)
}
