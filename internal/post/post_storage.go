package post

import (
	"context"
	"errors"

	"github.com/mvoronov/blogicum/internal/model"
)

var (
	// ErrPostNotFound возвращается и для несуществующего поста, и для поста,
	// скрытого политикой видимости: наличие скрытого контента не раскрывается.
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("only the author can modify the post")
)

// PostStorage — хранилище постов.
// viewer — идентификатор смотрящего (nil для анонимного посетителя),
// actor для мутаций извлекается из контекста запроса.
type PostStorage interface {
	CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error)
	GetPostByID(id string, viewer *uint) (*model.Post, error)
	UpdatePost(ctx context.Context, id string, input model.PostInput) (*model.Post, error)
	DeletePostByID(ctx context.Context, id string) error

	// Ленты: глобальная, по категории, по профилю автора.
	// Все отсортированы по pub_date по убыванию, страница фиксированного размера.
	ListFeed(viewer *uint, page int) (*model.PostPage, error)
	ListCategory(slug string, viewer *uint, page int) (*model.PostPage, error)
	ListProfile(username string, viewer *uint, page int) (*model.PostPage, error)
}
