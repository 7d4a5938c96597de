package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/pagination"
)

const loginPath = "/auth/login"

type errorResponse struct {
	Error string `json:"error"`
}

// validationResponse — ответ 400: ошибки по полям плюс введенные данные,
// чтобы клиент мог перерисовать форму без потери ввода.
type validationResponse struct {
	Errors map[string]string `json:"errors"`
	Form   interface{}       `json:"form"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func respondNotFound(w http.ResponseWriter) {
	respondError(w, http.StatusNotFound, "not found")
}

func respondServerError(w http.ResponseWriter, err error) {
	log.Printf("internal error: %v", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// requireUser проверяет аутентификацию до любого обращения к хранилищу.
// Аноним на мутирующем маршруте отправляется на вход.
func requireUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, err := auth.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return 0, false
	}
	return userID, true
}

func postDetailPath(id string) string {
	return "/posts/" + id + "/"
}

// pageParam читает ?page=N; отсутствие параметра — первая страница,
// мусор в параметре превращается в невалидный номер страницы.
func pageParam(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return page
}

// writeListError — общий разбор ошибок лент.
func writeListError(w http.ResponseWriter, err error, notFound ...error) {
	if errors.Is(err, pagination.ErrInvalidPage) {
		respondError(w, http.StatusBadRequest, "invalid page number")
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			respondNotFound(w)
			return
		}
	}
	respondServerError(w, err)
}

// writeValidationError пишет 400 с деталями, если err — ошибка валидации.
func writeValidationError(w http.ResponseWriter, form interface{}, err error) bool {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusBadRequest, validationResponse{Errors: vErr.Fields, Form: form})
		return true
	}
	return false
}
