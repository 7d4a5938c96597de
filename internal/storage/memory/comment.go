package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/comment"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/post"
	"github.com/mvoronov/blogicum/models"
)

type CommentMemoryStorage struct {
	mu       sync.Mutex
	comments map[uint]*models.Comment
	nextID   uint // для хранения актуального ID

	posts *PostMemoryStorage // хранилище постов (внедрение зависимости)
	users *UserMemoryStorage
}

func NewCommentMemoryStorage(posts *PostMemoryStorage, users *UserMemoryStorage) *CommentMemoryStorage {
	return &CommentMemoryStorage{
		comments: make(map[uint]*models.Comment),
		nextID:   1,
		posts:    posts,
		users:    users,
	}
}

func (s *CommentMemoryStorage) CreateComment(ctx context.Context, postID, text string) (*model.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	if err := comment.ValidateText(text); err != nil {
		return nil, err
	}

	pid, ok := parseID(postID)
	if !ok {
		return nil, post.ErrPostNotFound
	}

	// для комментирования достаточно существования поста,
	// видимость поста здесь намеренно не проверяется
	if !s.posts.exists(pid) {
		return nil, post.ErrPostNotFound
	}

	s.mu.Lock()

	// автор всегда берется из контекста, а не из данных формы
	c := &models.Comment{
		Text:        text,
		IsPublished: true,
		PostID:      pid,
		UserID:      userID,
	}
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	s.nextID++

	s.comments[c.ID] = c
	copied := *c
	s.mu.Unlock()

	return s.buildComment(&copied), nil
}

func (s *CommentMemoryStorage) GetComments(postID string, viewer *uint) ([]*model.Comment, error) {
	pid, ok := parseID(postID)
	if !ok {
		return nil, post.ErrPostNotFound
	}

	// тред наследует видимость родительского поста
	exists, visible := s.posts.visibleTo(pid, viewer)
	if !exists || !visible {
		return nil, post.ErrPostNotFound
	}

	s.mu.Lock()
	thread := make([]models.Comment, 0)
	for _, c := range s.comments {
		if c.PostID == pid {
			thread = append(thread, *c)
		}
	}
	s.mu.Unlock()

	// created_at по возрастанию (и по ID в случае одинакового времени создания)
	sort.Slice(thread, func(i, j int) bool {
		if thread[i].CreatedAt.Equal(thread[j].CreatedAt) {
			return thread[i].ID < thread[j].ID
		}
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})

	results := make([]*model.Comment, 0, len(thread))
	for i := range thread {
		results = append(results, s.buildComment(&thread[i]))
	}

	return results, nil
}

func (s *CommentMemoryStorage) UpdateComment(ctx context.Context, id, text string) (*model.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	commentID, ok := parseID(id)
	if !ok {
		return nil, comment.ErrCommentNotFound
	}

	if err := comment.ValidateText(text); err != nil {
		return nil, err
	}

	s.mu.Lock()

	c, exists := s.comments[commentID]
	if !exists {
		s.mu.Unlock()
		return nil, comment.ErrCommentNotFound
	}

	if c.UserID != userID {
		s.mu.Unlock()
		return nil, comment.ErrNotAuthor
	}

	c.Text = text
	copied := *c
	s.mu.Unlock()

	return s.buildComment(&copied), nil
}

func (s *CommentMemoryStorage) DeleteCommentByID(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("could not get user id from context: %w", err)
	}

	commentID, ok := parseID(id)
	if !ok {
		return comment.ErrCommentNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.comments[commentID]
	if !exists {
		return comment.ErrCommentNotFound
	}

	if c.UserID != userID {
		return comment.ErrNotAuthor
	}

	delete(s.comments, commentID)
	return nil
}

// countForPost — количество комментариев одного поста.
func (s *CommentMemoryStorage) countForPost(postID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count
}

// countForPosts — счетчики для страницы ленты за один проход.
func (s *CommentMemoryStorage) countForPosts(ids []uint) map[uint]int {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[uint]int, len(ids))
	for _, c := range s.comments {
		if wanted[c.PostID] {
			counts[c.PostID]++
		}
	}
	return counts
}

// deleteForPost — каскадное удаление комментариев вместе с постом.
func (s *CommentMemoryStorage) deleteForPost(postID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
		}
	}
}

func (s *CommentMemoryStorage) buildComment(c *models.Comment) *model.Comment {
	result := &model.Comment{
		ID:        fmt.Sprint(c.ID),
		PostID:    fmt.Sprint(c.PostID),
		Text:      c.Text,
		AuthorID:  fmt.Sprint(c.UserID),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if username, ok := s.users.usernameByID(c.UserID); ok {
		result.Author = username
	}
	return result
}
