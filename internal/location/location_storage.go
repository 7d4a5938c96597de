package location

import (
	"errors"

	"github.com/mvoronov/blogicum/internal/model"
)

var ErrLocationNotFound = errors.New("location not found")

// LocationStorage — хранилище местоположений (ведутся администраторами).
type LocationStorage interface {
	ListLocations() ([]*model.Location, error)
	CreateLocation(name string) (*model.Location, error)
}
