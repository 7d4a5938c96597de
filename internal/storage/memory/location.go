package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/models"
)

type LocationMemoryStorage struct {
	mu        sync.Mutex
	locations map[uint]*models.Location
	nextID    uint
}

func NewLocationMemoryStorage() *LocationMemoryStorage {
	return &LocationMemoryStorage{
		locations: make(map[uint]*models.Location),
		nextID:    1,
	}
}

func (s *LocationMemoryStorage) ListLocations() ([]*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*model.Location
	for _, loc := range s.locations {
		if loc.IsPublished {
			results = append(results, &model.Location{
				ID:   fmt.Sprint(loc.ID),
				Name: loc.Name,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	return results, nil
}

func (s *LocationMemoryStorage) CreateLocation(name string) (*model.Location, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.NewValidationError("name", "name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loc := &models.Location{Name: name, IsPublished: true}
	loc.ID = s.nextID
	s.nextID++

	s.locations[loc.ID] = loc

	return &model.Location{ID: fmt.Sprint(loc.ID), Name: loc.Name}, nil
}

// nameByID — название местоположения для сборки представления поста.
func (s *LocationMemoryStorage) nameByID(id uint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, exists := s.locations[id]
	if !exists {
		return "", false
	}
	return loc.Name, true
}
