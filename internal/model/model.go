package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Post — представление поста, отдаваемое хранилищем наружу.
// CommentCount считается хранилищем одним агрегирующим запросом.
type Post struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Text         string  `json:"text"`
	PubDate      string  `json:"pubDate"` // RFC3339
	IsPublished  bool    `json:"isPublished"`
	AuthorID     string  `json:"authorId"`
	Author       string  `json:"author"` // username автора
	Category     *string `json:"category,omitempty"`
	CategorySlug *string `json:"categorySlug,omitempty"`
	Location     *string `json:"location,omitempty"`
	Image        string  `json:"image,omitempty"`
	CommentCount int     `json:"commentCount"`
}

// PostPage — одна страница ленты.
type PostPage struct {
	Items   []*Post `json:"items"`
	Page    int     `json:"page"`
	HasMore bool    `json:"hasMore"`
}

type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	Text      string `json:"text"`
	AuthorID  string `json:"authorId"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"` // RFC3339
}

type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// PostInput — данные формы создания/редактирования поста.
// Автор в input отсутствует намеренно: он всегда берется из контекста запроса.
type PostInput struct {
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	PubDate    time.Time `json:"pubDate"`
	CategoryID *uint     `json:"categoryId"`
	LocationID *uint     `json:"locationId"`
	Image      string    `json:"image"`
}

// ProfileInput — данные формы редактирования профиля.
type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ValidationError — ошибка валидации формы с детализацией по полям.
// Хендлер возвращает ее пользователю вместе с введенными данными.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError собирает ошибку из пар "поле, сообщение".
func NewValidationError(pairs ...string) *ValidationError {
	fields := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields[pairs[i]] = pairs[i+1]
	}
	return &ValidationError{Fields: fields}
}
