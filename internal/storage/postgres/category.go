package postgres

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"

	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/models"
)

type CategoryPostgresStorage struct{}

func NewCategoryPostgresStorage() *CategoryPostgresStorage {
	return &CategoryPostgresStorage{}
}

func (s *CategoryPostgresStorage) GetCategoryBySlug(slug string) (*model.Category, error) {
	var cat models.Category
	err := DB.Where("slug = ?", slug).First(&cat).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("could not get category by slug: %w", err)
	}

	// скрытая категория неотличима от несуществующей
	if !cat.IsPublished {
		return nil, category.ErrCategoryNotFound
	}

	return categoryToModel(&cat), nil
}

func (s *CategoryPostgresStorage) ListCategories() ([]*model.Category, error) {
	var cats []models.Category
	err := DB.Where("is_published = ?", true).Order("title ASC").Find(&cats).Error
	if err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}

	results := make([]*model.Category, 0, len(cats))
	for i := range cats {
		results = append(results, categoryToModel(&cats[i]))
	}
	return results, nil
}

func (s *CategoryPostgresStorage) CreateCategory(title, description, slug string) (*model.Category, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(slug) == "" {
		return nil, model.NewValidationError("title", "title and slug must not be empty")
	}

	cat := &models.Category{
		Title:       title,
		Description: description,
		Slug:        slug,
		IsPublished: true,
	}

	err := DB.Create(cat).Error
	if err != nil {
		return nil, fmt.Errorf("could not create category: %w", err)
	}

	return categoryToModel(cat), nil
}

func categoryToModel(cat *models.Category) *model.Category {
	return &model.Category{
		ID:          fmt.Sprint(cat.ID),
		Title:       cat.Title,
		Description: cat.Description,
		Slug:        cat.Slug,
	}
}
