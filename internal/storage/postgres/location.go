package postgres

import (
	"fmt"
	"strings"

	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/models"
)

type LocationPostgresStorage struct{}

func NewLocationPostgresStorage() *LocationPostgresStorage {
	return &LocationPostgresStorage{}
}

func (s *LocationPostgresStorage) ListLocations() ([]*model.Location, error) {
	var locs []models.Location
	err := DB.Where("is_published = ?", true).Order("name ASC").Find(&locs).Error
	if err != nil {
		return nil, fmt.Errorf("could not list locations: %w", err)
	}

	results := make([]*model.Location, 0, len(locs))
	for i := range locs {
		results = append(results, &model.Location{
			ID:   fmt.Sprint(locs[i].ID),
			Name: locs[i].Name,
		})
	}
	return results, nil
}

func (s *LocationPostgresStorage) CreateLocation(name string) (*model.Location, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.NewValidationError("name", "name must not be empty")
	}

	loc := &models.Location{Name: name, IsPublished: true}
	err := DB.Create(loc).Error
	if err != nil {
		return nil, fmt.Errorf("could not create location: %w", err)
	}

	return &model.Location{ID: fmt.Sprint(loc.ID), Name: loc.Name}, nil
}
