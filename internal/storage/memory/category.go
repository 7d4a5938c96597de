package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/models"
)

type CategoryMemoryStorage struct {
	mu         sync.Mutex
	categories map[uint]*models.Category
	bySlug     map[string]uint
	nextID     uint
}

func NewCategoryMemoryStorage() *CategoryMemoryStorage {
	return &CategoryMemoryStorage{
		categories: make(map[uint]*models.Category),
		bySlug:     make(map[string]uint),
		nextID:     1,
	}
}

func (s *CategoryMemoryStorage) GetCategoryBySlug(slug string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.bySlug[slug]
	if !exists {
		return nil, category.ErrCategoryNotFound
	}

	cat := s.categories[id]
	// скрытая категория неотличима от несуществующей
	if !cat.IsPublished {
		return nil, category.ErrCategoryNotFound
	}

	return categoryToModel(cat), nil
}

func (s *CategoryMemoryStorage) ListCategories() ([]*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*model.Category
	for _, cat := range s.categories {
		if cat.IsPublished {
			results = append(results, categoryToModel(cat))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Title < results[j].Title
	})

	return results, nil
}

func (s *CategoryMemoryStorage) CreateCategory(title, description, slug string) (*model.Category, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(slug) == "" {
		return nil, model.NewValidationError("title", "title and slug must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[slug]; exists {
		return nil, fmt.Errorf("category with slug %s already exists", slug)
	}

	cat := &models.Category{
		Title:       title,
		Description: description,
		Slug:        slug,
		IsPublished: true,
	}
	cat.ID = s.nextID
	s.nextID++

	s.categories[cat.ID] = cat
	s.bySlug[slug] = cat.ID

	return categoryToModel(cat), nil
}

// Unpublish снимает категорию с публикации (административная операция).
func (s *CategoryMemoryStorage) Unpublish(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.bySlug[slug]; exists {
		s.categories[id].IsPublished = false
	}
}

// byID возвращает копию категории для проверки видимости постов.
func (s *CategoryMemoryStorage) byID(id uint) (*models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, exists := s.categories[id]
	if !exists {
		return nil, false
	}
	copied := *cat
	return &copied, true
}

func categoryToModel(cat *models.Category) *model.Category {
	return &model.Category{
		ID:          fmt.Sprint(cat.ID),
		Title:       cat.Title,
		Description: cat.Description,
		Slug:        cat.Slug,
	}
}
