package comment

import (
	"context"
	"errors"

	"github.com/mvoronov/blogicum/internal/model"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthor       = errors.New("only the author can modify the comment")
)

// CommentStorage — хранилище комментариев.
// Для создания достаточно существования поста (видимость не проверяется),
// чтение треда требует видимости родительского поста.
type CommentStorage interface {
	CreateComment(ctx context.Context, postID, text string) (*model.Comment, error)
	GetComments(postID string, viewer *uint) ([]*model.Comment, error)
	UpdateComment(ctx context.Context, id, text string) (*model.Comment, error)
	DeleteCommentByID(ctx context.Context, id string) error
}
