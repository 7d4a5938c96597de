package visibility

import (
	"time"

	"github.com/mvoronov/blogicum/models"
)

// PostVisible — чистый предикат видимости поста.
// Автор всегда видит свои посты (черновики и отложенные публикации).
// Для остальных пост виден только если опубликован сам пост,
// опубликована его категория и дата публикации уже наступила.
// viewer == nil означает анонимного посетителя.
func PostVisible(post *models.Post, category *models.Category, viewer *uint, now time.Time) bool {
	if viewer != nil && *viewer == post.UserID {
		return true
	}
	if !post.IsPublished {
		return false
	}
	// пост без категории (или со скрытой категорией) публично не виден
	if category == nil || !category.IsPublished {
		return false
	}
	return !post.PubDate.After(now)
}

// CategoryVisible — категория видна в листингах только если опубликована.
// Скрытая категория неотличима от несуществующей ("not found", не "forbidden").
func CategoryVisible(category *models.Category) bool {
	return category != nil && category.IsPublished
}
