package handlers

import (
	"net/http"

	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/location"
)

// ListCategories — опубликованные категории (для формы поста).
func ListCategories(categories category.CategoryStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := categories.ListCategories()
		if err != nil {
			respondServerError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, cats)
	}
}

// ListLocations — опубликованные местоположения (для формы поста).
func ListLocations(locations location.LocationStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locs, err := locations.ListLocations()
		if err != nil {
			respondServerError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, locs)
	}
}
