package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/comment"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/post"
	"github.com/mvoronov/blogicum/internal/visibility"
	"github.com/mvoronov/blogicum/models"
)

type CommentPostgresStorage struct{}

func NewCommentPostgresStorage() *CommentPostgresStorage {
	return &CommentPostgresStorage{}
}

func (s *CommentPostgresStorage) CreateComment(ctx context.Context, postID, text string) (*model.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	if err := comment.ValidateText(text); err != nil {
		return nil, err
	}

	// для комментирования достаточно существования поста,
	// видимость поста здесь намеренно не проверяется
	p, err := findPost(postID)
	if err != nil {
		return nil, err
	}

	// автор всегда берется из контекста, а не из данных формы
	c := &models.Comment{
		Text:        text,
		IsPublished: true,
		PostID:      p.ID,
		UserID:      userID,
	}

	err = DB.Create(c).Error
	if err != nil {
		return nil, fmt.Errorf("could not create comment: %w", err)
	}

	return s.buildComment(c)
}

func (s *CommentPostgresStorage) GetComments(postID string, viewer *uint) ([]*model.Comment, error) {
	p, err := findPost(postID)
	if err != nil {
		return nil, err
	}

	cat, err := findPostCategory(p)
	if err != nil {
		return nil, err
	}

	// тред наследует видимость родительского поста
	if !visibility.PostVisible(p, cat, viewer, time.Now()) {
		return nil, post.ErrPostNotFound
	}

	type commentRow struct {
		ID        uint
		PostID    uint
		Text      string
		UserID    uint
		CreatedAt time.Time
		Username  string
	}

	var rows []commentRow
	err = DB.Table("comments").
		Select("comments.id, comments.post_id, comments.text, comments.user_id, comments.created_at, users.username").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ? AND comments.deleted_at IS NULL", p.ID).
		Order("comments.created_at ASC, comments.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get comments: %w", err)
	}

	results := make([]*model.Comment, 0, len(rows))
	for _, row := range rows {
		results = append(results, &model.Comment{
			ID:        fmt.Sprint(row.ID),
			PostID:    fmt.Sprint(row.PostID),
			Text:      row.Text,
			AuthorID:  fmt.Sprint(row.UserID),
			Author:    row.Username,
			CreatedAt: row.CreatedAt.Format(time.RFC3339),
		})
	}

	return results, nil
}

func (s *CommentPostgresStorage) UpdateComment(ctx context.Context, id, text string) (*model.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	c, err := findComment(id)
	if err != nil {
		return nil, err
	}

	if c.UserID != userID {
		return nil, comment.ErrNotAuthor
	}

	if err := comment.ValidateText(text); err != nil {
		return nil, err
	}

	err = DB.Model(c).Update("text", text).Error
	if err != nil {
		return nil, fmt.Errorf("could not update comment: %w", err)
	}

	return s.buildComment(c)
}

func (s *CommentPostgresStorage) DeleteCommentByID(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("could not get user id from context: %w", err)
	}

	c, err := findComment(id)
	if err != nil {
		return err
	}

	if c.UserID != userID {
		return comment.ErrNotAuthor
	}

	err = DB.Delete(c).Error
	if err != nil {
		return fmt.Errorf("could not delete comment: %w", err)
	}

	return nil
}

func findComment(id string) (*models.Comment, error) {
	var c models.Comment
	err := DB.First(&c, "id = ?", id).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, comment.ErrCommentNotFound
		}
		return nil, fmt.Errorf("could not get comment by id: %w", err)
	}
	return &c, nil
}

func (s *CommentPostgresStorage) buildComment(c *models.Comment) (*model.Comment, error) {
	var author models.User
	err := DB.First(&author, "id = ?", c.UserID).Error
	if err != nil {
		return nil, fmt.Errorf("could not get comment author: %w", err)
	}

	return &model.Comment{
		ID:        fmt.Sprint(c.ID),
		PostID:    fmt.Sprint(c.PostID),
		Text:      c.Text,
		AuthorID:  fmt.Sprint(c.UserID),
		Author:    author.Username,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}, nil
}
