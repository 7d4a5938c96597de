package category

import (
	"errors"

	"github.com/mvoronov/blogicum/internal/model"
)

// ErrCategoryNotFound возвращается и для отсутствующей, и для снятой
// с публикации категории.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryStorage — хранилище категорий. Категории ведутся администраторами,
// публичного создания нет: CreateCategory используется сидированием и тестами.
type CategoryStorage interface {
	GetCategoryBySlug(slug string) (*model.Category, error)
	ListCategories() ([]*model.Category, error)
	CreateCategory(title, description, slug string) (*model.Category, error)
}
