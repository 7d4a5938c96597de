package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/pagination"
	"github.com/mvoronov/blogicum/internal/post"
	"github.com/mvoronov/blogicum/internal/user"
	"github.com/mvoronov/blogicum/internal/visibility"
	"github.com/mvoronov/blogicum/models"
)

type PostPostgresStorage struct{}

func NewPostPostgresStorage() *PostPostgresStorage {
	return &PostPostgresStorage{}
}

// postRow — строка агрегирующего запроса ленты: пост вместе с автором,
// категорией, местоположением и количеством комментариев.
type postRow struct {
	ID            uint
	Title         string
	Text          string
	PubDate       time.Time
	IsPublished   bool
	Image         string
	UserID        uint
	Username      string
	CategoryTitle *string
	CategorySlug  *string
	LocationName  *string
	CommentCount  int
}

func (r *postRow) toModel() *model.Post {
	return &model.Post{
		ID:           fmt.Sprint(r.ID),
		Title:        r.Title,
		Text:         r.Text,
		PubDate:      r.PubDate.Format(time.RFC3339),
		IsPublished:  r.IsPublished,
		AuthorID:     fmt.Sprint(r.UserID),
		Author:       r.Username,
		Category:     r.CategoryTitle,
		CategorySlug: r.CategorySlug,
		Location:     r.LocationName,
		Image:        r.Image,
		CommentCount: r.CommentCount,
	}
}

// feedQuery — контракт ленты: один агрегирующий запрос на страницу,
// без дополнительных запросов на каждый пост.
func feedQuery() *gorm.DB {
	return DB.Table("posts").
		Select(`posts.id, posts.title, posts.text, posts.pub_date, posts.is_published, posts.image, posts.user_id,
			users.username AS username,
			categories.title AS category_title, categories.slug AS category_slug,
			locations.name AS location_name,
			COUNT(comments.id) AS comment_count`).
		Joins("JOIN users ON users.id = posts.user_id AND users.deleted_at IS NULL").
		Joins("LEFT JOIN categories ON categories.id = posts.category_id AND categories.deleted_at IS NULL").
		Joins("LEFT JOIN locations ON locations.id = posts.location_id AND locations.deleted_at IS NULL").
		Joins("LEFT JOIN comments ON comments.post_id = posts.id AND comments.deleted_at IS NULL").
		Where("posts.deleted_at IS NULL").
		Group(`posts.id, posts.title, posts.text, posts.pub_date, posts.is_published, posts.image, posts.user_id,
			users.username, categories.title, categories.slug, locations.name`).
		Order("posts.pub_date DESC, posts.id ASC")
}

// publicOnly накладывает фильтр видимости для чужих и анонимных просмотров.
func publicOnly(q *gorm.DB, now time.Time) *gorm.DB {
	return q.Where(
		"posts.is_published = ? AND categories.is_published = ? AND posts.pub_date <= ?",
		true, true, now,
	)
}

func listPage(q *gorm.DB, page int) (*model.PostPage, error) {
	offset, err := pagination.Offset(page)
	if err != nil {
		return nil, err
	}

	// запрашиваем одну лишнюю строку, чтобы узнать о следующей странице
	var rows []postRow
	err = q.Limit(pagination.PageSize + 1).Offset(offset).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not list posts: %w", err)
	}

	hasMore := len(rows) > pagination.PageSize
	if hasMore {
		rows = rows[:pagination.PageSize]
	}

	items := make([]*model.Post, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toModel())
	}

	return &model.PostPage{Items: items, Page: page, HasMore: hasMore}, nil
}

func (s *PostPostgresStorage) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	if err := post.ValidateInput(input); err != nil {
		return nil, err
	}

	// автор всегда берется из контекста, а не из input
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

	err = DB.Create(p).Error
	if err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	return s.buildPost(p)
}

func (s *PostPostgresStorage) GetPostByID(id string, viewer *uint) (*model.Post, error) {
	p, err := findPost(id)
	if err != nil {
		return nil, err
	}

	cat, err := findPostCategory(p)
	if err != nil {
		return nil, err
	}

	// скрытый пост неотличим от несуществующего
	if !visibility.PostVisible(p, cat, viewer, time.Now()) {
		return nil, post.ErrPostNotFound
	}

	return s.buildPost(p)
}

func (s *PostPostgresStorage) UpdatePost(ctx context.Context, id string, input model.PostInput) (*model.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	p, err := findPost(id)
	if err != nil {
		return nil, err
	}

	if p.UserID != userID {
		return nil, post.ErrNotAuthor
	}

	if err := post.ValidateInput(input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":       input.Title,
		"text":        input.Text,
		"pub_date":    input.PubDate,
		"category_id": input.CategoryID,
		"location_id": input.LocationID,
		"image":       input.Image,
	}
	err = DB.Model(p).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("could not update post: %w", err)
	}

	return s.buildPost(p)
}

func (s *PostPostgresStorage) DeletePostByID(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("could not get user id from context: %w", err)
	}

	p, err := findPost(id)
	if err != nil {
		return err
	}

	if p.UserID != userID {
		return post.ErrNotAuthor
	}

	// каскад: комментарии удаляются вместе с постом
	err = DB.Where("post_id = ?", p.ID).Delete(&models.Comment{}).Error
	if err != nil {
		return fmt.Errorf("could not delete post comments: %w", err)
	}

	err = DB.Delete(p).Error
	if err != nil {
		return fmt.Errorf("could not delete post: %w", err)
	}

	return nil
}

func (s *PostPostgresStorage) ListFeed(viewer *uint, page int) (*model.PostPage, error) {
	return listPage(publicOnly(feedQuery(), time.Now()), page)
}

func (s *PostPostgresStorage) ListCategory(slug string, viewer *uint, page int) (*model.PostPage, error) {
	var cat models.Category
	err := DB.Where("slug = ?", slug).First(&cat).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("could not get category: %w", err)
	}

	// скрытая категория неотличима от несуществующей
	if !visibility.CategoryVisible(&cat) {
		return nil, category.ErrCategoryNotFound
	}

	q := publicOnly(feedQuery(), time.Now()).Where("posts.category_id = ?", cat.ID)
	return listPage(q, page)
}

func (s *PostPostgresStorage) ListProfile(username string, viewer *uint, page int) (*model.PostPage, error) {
	var author models.User
	err := DB.Where("username = ?", username).First(&author).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("could not get user: %w", err)
	}

	// владелец профиля видит все свои посты, включая черновики и отложенные
	if viewer != nil && *viewer == author.ID {
		return listPage(feedQuery().Where("posts.user_id = ?", author.ID), page)
	}

	q := publicOnly(feedQuery(), time.Now()).Where("posts.user_id = ?", author.ID)
	return listPage(q, page)
}

// findPost достает пост по строковому ID; "не найден" всегда ErrPostNotFound.
func findPost(id string) (*models.Post, error) {
	var p models.Post
	err := DB.First(&p, "id = ?", id).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, post.ErrPostNotFound
		}
		return nil, fmt.Errorf("could not get post by id: %w", err)
	}
	return &p, nil
}

// findPostCategory загружает категорию поста (nil, если категории нет).
func findPostCategory(p *models.Post) (*models.Category, error) {
	if p.CategoryID == nil {
		return nil, nil
	}
	var cat models.Category
	err := DB.First(&cat, "id = ?", *p.CategoryID).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get category: %w", err)
	}
	return &cat, nil
}

// buildPost собирает представление поста с автором, категорией,
// местоположением и количеством комментариев.
func (s *PostPostgresStorage) buildPost(p *models.Post) (*model.Post, error) {
	var author models.User
	err := DB.First(&author, "id = ?", p.UserID).Error
	if err != nil {
		return nil, fmt.Errorf("could not get post author: %w", err)
	}

	result := &model.Post{
		ID:          fmt.Sprint(p.ID),
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     p.PubDate.Format(time.RFC3339),
		IsPublished: p.IsPublished,
		AuthorID:    fmt.Sprint(p.UserID),
		Author:      author.Username,
		Image:       p.Image,
	}

	cat, err := findPostCategory(p)
	if err != nil {
		return nil, err
	}
	if cat != nil {
		result.Category = &cat.Title
		result.CategorySlug = &cat.Slug
	}

	if p.LocationID != nil {
		var loc models.Location
		err = DB.First(&loc, "id = ?", *p.LocationID).Error
		if err == nil {
			result.Location = &loc.Name
		} else if !gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("could not get location: %w", err)
		}
	}

	var count int
	err = DB.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("could not count comments: %w", err)
	}
	result.CommentCount = count

	return result, nil
}
