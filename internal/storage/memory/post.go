package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/pagination"
	"github.com/mvoronov/blogicum/internal/post"
	"github.com/mvoronov/blogicum/internal/user"
	"github.com/mvoronov/blogicum/internal/visibility"
	"github.com/mvoronov/blogicum/models"
)

type PostMemoryStorage struct {
	mu     sync.Mutex
	posts  map[uint]*models.Post
	nextID uint // для хранения актуального ID

	// соседние хранилища (внедрение зависимости, как в остальных бэкендах)
	users      *UserMemoryStorage
	categories *CategoryMemoryStorage
	locations  *LocationMemoryStorage
	comments   *CommentMemoryStorage
}

func NewPostMemoryStorage(users *UserMemoryStorage, categories *CategoryMemoryStorage, locations *LocationMemoryStorage) *PostMemoryStorage {
	return &PostMemoryStorage{
		posts:      make(map[uint]*models.Post),
		nextID:     1,
		users:      users,
		categories: categories,
		locations:  locations,
	}
}

// AttachComments связывает хранилище комментариев после создания обоих
// (у постов и комментариев взаимные зависимости: счетчики и каскад).
func (s *PostMemoryStorage) AttachComments(comments *CommentMemoryStorage) {
	s.comments = comments
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	if err := post.ValidateInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()

	p := &models.Post{
		Title:       input.Title,
		Text:        input.Text,
		PubDate:     input.PubDate,
		IsPublished: true,
		UserID:      userID,
		CategoryID:  input.CategoryID,
		LocationID:  input.LocationID,
		Image:       input.Image,
	}
	p.ID = s.nextID
	p.CreatedAt = time.Now()
	s.nextID++

	s.posts[p.ID] = p
	copied := *p
	s.mu.Unlock()

	return s.buildPost(&copied, 0), nil
}

func (s *PostMemoryStorage) GetPostByID(id string, viewer *uint) (*model.Post, error) {
	p, err := s.snapshot(id)
	if err != nil {
		return nil, err
	}

	// скрытый пост неотличим от несуществующего
	if !visibility.PostVisible(p, s.postCategory(p), viewer, time.Now()) {
		return nil, post.ErrPostNotFound
	}

	return s.buildPost(p, s.commentCount(p.ID)), nil
}

func (s *PostMemoryStorage) UpdatePost(ctx context.Context, id string, input model.PostInput) (*model.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	postID, ok := parseID(id)
	if !ok {
		return nil, post.ErrPostNotFound
	}

	if err := post.ValidateInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()

	p, exists := s.posts[postID]
	if !exists {
		s.mu.Unlock()
		return nil, post.ErrPostNotFound
	}

	if p.UserID != userID {
		s.mu.Unlock()
		return nil, post.ErrNotAuthor
	}

	p.Title = input.Title
	p.Text = input.Text
	p.PubDate = input.PubDate
	p.CategoryID = input.CategoryID
	p.LocationID = input.LocationID
	p.Image = input.Image

	copied := *p
	s.mu.Unlock()

	return s.buildPost(&copied, s.commentCount(copied.ID)), nil
}

func (s *PostMemoryStorage) DeletePostByID(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("could not get user id from context: %w", err)
	}

	postID, ok := parseID(id)
	if !ok {
		return post.ErrPostNotFound
	}

	s.mu.Lock()

	p, exists := s.posts[postID]
	if !exists {
		s.mu.Unlock()
		return post.ErrPostNotFound
	}

	if p.UserID != userID {
		s.mu.Unlock()
		return post.ErrNotAuthor
	}

	delete(s.posts, postID)
	s.mu.Unlock()

	// каскад: комментарии удаляются вместе с постом
	if s.comments != nil {
		s.comments.deleteForPost(postID)
	}

	return nil
}

func (s *PostMemoryStorage) ListFeed(viewer *uint, page int) (*model.PostPage, error) {
	now := time.Now()
	return s.listPosts(func(p *models.Post) bool {
		return s.publiclyVisible(p, now)
	}, page)
}

func (s *PostMemoryStorage) ListCategory(slug string, viewer *uint, page int) (*model.PostPage, error) {
	// скрытая категория неотличима от несуществующей
	cat, err := s.categories.GetCategoryBySlug(slug)
	if err != nil {
		return nil, err
	}
	catID, ok := parseID(cat.ID)
	if !ok {
		return nil, category.ErrCategoryNotFound
	}

	now := time.Now()
	return s.listPosts(func(p *models.Post) bool {
		return p.CategoryID != nil && *p.CategoryID == catID && s.publiclyVisible(p, now)
	}, page)
}

func (s *PostMemoryStorage) ListProfile(username string, viewer *uint, page int) (*model.PostPage, error) {
	authorID, exists := s.users.idByUsername(username)
	if !exists {
		return nil, user.ErrUserNotFound
	}

	// владелец профиля видит все свои посты, включая черновики и отложенные
	if viewer != nil && *viewer == authorID {
		return s.listPosts(func(p *models.Post) bool {
			return p.UserID == authorID
		}, page)
	}

	now := time.Now()
	return s.listPosts(func(p *models.Post) bool {
		return p.UserID == authorID && s.publiclyVisible(p, now)
	}, page)
}

// publiclyVisible — публичный фильтр лент (без авторского исключения).
func (s *PostMemoryStorage) publiclyVisible(p *models.Post, now time.Time) bool {
	return visibility.PostVisible(p, s.postCategory(p), nil, now)
}

func (s *PostMemoryStorage) listPosts(filter func(*models.Post) bool, page int) (*model.PostPage, error) {
	offset, err := pagination.Offset(page)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	matched := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		matched = append(matched, *p)
	}
	s.mu.Unlock()

	filtered := matched[:0]
	for i := range matched {
		if filter(&matched[i]) {
			filtered = append(filtered, matched[i])
		}
	}

	// pub_date по убыванию, при равенстве — порядок вставки (ID по возрастанию)
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].PubDate.Equal(filtered[j].PubDate) {
			return filtered[i].ID < filtered[j].ID
		}
		return filtered[i].PubDate.After(filtered[j].PubDate)
	})

	if offset >= len(filtered) {
		return &model.PostPage{Items: []*model.Post{}, Page: page, HasMore: false}, nil
	}

	end := offset + pagination.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	pageItems := filtered[offset:end]
	hasMore := end < len(filtered)

	// счетчики комментариев для всей страницы за один проход
	ids := make([]uint, 0, len(pageItems))
	for i := range pageItems {
		ids = append(ids, pageItems[i].ID)
	}
	counts := s.commentCounts(ids)

	items := make([]*model.Post, 0, len(pageItems))
	for i := range pageItems {
		items = append(items, s.buildPost(&pageItems[i], counts[pageItems[i].ID]))
	}

	return &model.PostPage{Items: items, Page: page, HasMore: hasMore}, nil
}

// snapshot возвращает копию поста по строковому ID.
func (s *PostMemoryStorage) snapshot(id string) (*models.Post, error) {
	postID, ok := parseID(id)
	if !ok {
		return nil, post.ErrPostNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[postID]
	if !exists {
		return nil, post.ErrPostNotFound
	}
	copied := *p
	return &copied, nil
}

// exists — проверка существования поста (для создания комментариев
// видимость намеренно не учитывается).
func (s *PostMemoryStorage) exists(postID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.posts[postID]
	return ok
}

// visibleTo — существование и видимость поста для чтения треда.
func (s *PostMemoryStorage) visibleTo(postID uint, viewer *uint) (exists, visible bool) {
	s.mu.Lock()
	p, ok := s.posts[postID]
	if !ok {
		s.mu.Unlock()
		return false, false
	}
	copied := *p
	s.mu.Unlock()

	return true, visibility.PostVisible(&copied, s.postCategory(&copied), viewer, time.Now())
}

func (s *PostMemoryStorage) postCategory(p *models.Post) *models.Category {
	if p.CategoryID == nil {
		return nil
	}
	cat, ok := s.categories.byID(*p.CategoryID)
	if !ok {
		return nil
	}
	return cat
}

func (s *PostMemoryStorage) commentCount(postID uint) int {
	if s.comments == nil {
		return 0
	}
	return s.comments.countForPost(postID)
}

func (s *PostMemoryStorage) commentCounts(ids []uint) map[uint]int {
	if s.comments == nil {
		return map[uint]int{}
	}
	return s.comments.countForPosts(ids)
}

// setPublished — административное снятие поста с публикации (для тестов).
func (s *PostMemoryStorage) setPublished(postID uint, published bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, exists := s.posts[postID]; exists {
		p.IsPublished = published
	}
}

func (s *PostMemoryStorage) buildPost(p *models.Post, commentCount int) *model.Post {
	result := &model.Post{
		ID:           fmt.Sprint(p.ID),
		Title:        p.Title,
		Text:         p.Text,
		PubDate:      p.PubDate.Format(time.RFC3339),
		IsPublished:  p.IsPublished,
		AuthorID:     fmt.Sprint(p.UserID),
		Image:        p.Image,
		CommentCount: commentCount,
	}

	if username, ok := s.users.usernameByID(p.UserID); ok {
		result.Author = username
	}

	if cat := s.postCategory(p); cat != nil {
		result.Category = &cat.Title
		result.CategorySlug = &cat.Slug
	}

	if p.LocationID != nil {
		if name, ok := s.locations.nameByID(*p.LocationID); ok {
			result.Location = &name
		}
	}

	return result
}
