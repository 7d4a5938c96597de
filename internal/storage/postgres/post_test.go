package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // Импортируем драйвер SQLite
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/pagination"
	"github.com/mvoronov/blogicum/internal/post"
	"github.com/mvoronov/blogicum/internal/user"
	"github.com/mvoronov/blogicum/models"
)

// Создает контекст с ID пользователя
func createUserContext(userID uint) context.Context {
	ctx := context.Background()
	return auth.WithUserID(ctx, userID)
}

// setupTestDB создает тестовую БД в памяти и выполняет миграции
func setupTestDB(t *testing.T) *gorm.DB {
	// Сохраняем оригинальное соединение (если оно есть)
	oldDB := GetDB()

	// Создаем SQLite в памяти
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory SQLite")

	// Включаем foreign keys в SQLite
	db.Exec("PRAGMA foreign_keys = ON")
	// Отключаем логирование запросов для тестов
	db.LogMode(false)
	// Выполняем миграцию схемы базы данных
	err = db.AutoMigrate(&models.User{}, &models.Category{}, &models.Location{}, &models.Post{}, &models.Comment{}).Error
	require.NoError(t, err, "Failed to migrate database schema")
	// Устанавливаем SQLite в качестве глобальной DB
	InitDBWithConnection(db)

	return oldDB
}

// teardownTestDB восстанавливает оригинальную базу данных
func teardownTestDB(db *gorm.DB) {
	// Восстанавливаем оригинальное соединение
	InitDBWithConnection(db)
}

// createTestUser создает тестового пользователя и возвращает его ID
func createTestUser(t *testing.T, username string) uint {
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}

	err := DB.Create(u).Error
	require.NoError(t, err, "Failed to create test user")

	return u.ID
}

// createTestCategory создает категорию; published управляет видимостью
func createTestCategory(t *testing.T, slug string, published bool) uint {
	cat := &models.Category{
		Title:       "Category " + slug,
		Description: "test category",
		Slug:        slug,
		IsPublished: true,
	}

	err := DB.Create(cat).Error
	require.NoError(t, err, "Failed to create test category")

	// у поля есть default:true — false при создании затирается дефолтом,
	// поэтому снимаем публикацию отдельным обновлением
	if !published {
		err = DB.Model(cat).Update("is_published", false).Error
		require.NoError(t, err, "Failed to unpublish test category")
	}

	return cat.ID
}

// createTestPost создает пост с заданной датой публикации и видимостью
func createTestPost(t *testing.T, userID uint, categoryID *uint, title string, pubDate time.Time, published bool) uint {
	p := &models.Post{
		Title:       title,
		Text:        "text of " + title,
		PubDate:     pubDate,
		IsPublished: true,
		UserID:      userID,
		CategoryID:  categoryID,
	}

	err := DB.Create(p).Error
	require.NoError(t, err, "Failed to create test post")

	if !published {
		err = DB.Model(p).Update("is_published", false).Error
		require.NoError(t, err, "Failed to unpublish test post")
	}

	return p.ID
}

func createTestComment(t *testing.T, postID, userID uint, text string) uint {
	c := &models.Comment{
		Text:        text,
		IsPublished: true,
		PostID:      postID,
		UserID:      userID,
	}

	err := DB.Create(c).Error
	require.NoError(t, err, "Failed to create test comment")

	return c.ID
}

func TestPostPostgresStorage_CreatePost(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	userID := createTestUser(t, "author")
	catID := createTestCategory(t, "travel", true)
	storage := NewPostPostgresStorage()

	ctx := createUserContext(userID)
	pubDate := time.Now().Add(-time.Hour)

	created, err := storage.CreatePost(ctx, model.PostInput{
		Title:      "My first post",
		Text:       "Hello world",
		PubDate:    pubDate,
		CategoryID: &catID,
	})
	require.NoError(t, err)

	assert.Equal(t, "My first post", created.Title)
	assert.Equal(t, "author", created.Author)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Category travel", *created.Category)
	assert.Equal(t, 0, created.CommentCount)

	t.Run("без пользователя в контексте", func(t *testing.T) {
		_, err := storage.CreatePost(context.Background(), model.PostInput{
			Title:   "anon",
			Text:    "anon",
			PubDate: pubDate,
		})
		assert.Error(t, err)
	})

	t.Run("пустой заголовок", func(t *testing.T) {
		_, err := storage.CreatePost(ctx, model.PostInput{
			Title:   "   ",
			Text:    "text",
			PubDate: pubDate,
		})
		var vErr *model.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "title")
	})
}

func TestPostPostgresStorage_GetPostByID_Visibility(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	strangerID := createTestUser(t, "stranger")
	pubCatID := createTestCategory(t, "public-cat", true)
	hiddenCatID := createTestCategory(t, "hidden-cat", false)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	visible := createTestPost(t, authorID, &pubCatID, "visible", past, true)
	draft := createTestPost(t, authorID, &pubCatID, "draft", past, false)
	scheduled := createTestPost(t, authorID, &pubCatID, "scheduled", future, true)
	inHiddenCat := createTestPost(t, authorID, &hiddenCatID, "in hidden category", past, true)
	noCategory := createTestPost(t, authorID, nil, "no category", past, true)

	storage := NewPostPostgresStorage()

	tests := []struct {
		name    string
		postID  uint
		viewer  *uint
		visible bool
	}{
		{"опубликованный пост виден анониму", visible, nil, true},
		{"черновик скрыт от анонима", draft, nil, false},
		{"черновик скрыт от чужого", draft, &strangerID, false},
		{"автор видит свой черновик", draft, &authorID, true},
		{"отложенный пост скрыт от чужого", scheduled, &strangerID, false},
		{"автор видит свой отложенный пост", scheduled, &authorID, true},
		{"пост в скрытой категории скрыт от чужого", inHiddenCat, &strangerID, false},
		{"автор видит свой пост в скрытой категории", inHiddenCat, &authorID, true},
		// после удаления категории пост публично не виден, но остается у автора
		{"пост без категории скрыт от анонима", noCategory, nil, false},
		{"автор видит свой пост без категории", noCategory, &authorID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := storage.GetPostByID(fmt.Sprint(tt.postID), tt.viewer)
			if tt.visible {
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprint(tt.postID), p.ID)
			} else {
				// скрытый пост неотличим от несуществующего
				assert.ErrorIs(t, err, post.ErrPostNotFound)
			}
		})
	}

	t.Run("несуществующий пост", func(t *testing.T) {
		_, err := storage.GetPostByID("99999", &authorID)
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})
}

func TestPostPostgresStorage_UpdatePost(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	strangerID := createTestUser(t, "stranger")
	catID := createTestCategory(t, "travel", true)

	pubDate := time.Now().Add(-time.Hour)
	postID := createTestPost(t, authorID, &catID, "original", pubDate, true)
	storage := NewPostPostgresStorage()

	t.Run("автор редактирует свой пост", func(t *testing.T) {
		updated, err := storage.UpdatePost(createUserContext(authorID), fmt.Sprint(postID), model.PostInput{
			Title:   "edited",
			Text:    "edited text",
			PubDate: pubDate,
		})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Title)
		// категория снята — в форме она не передана
		assert.Nil(t, updated.Category)
	})

	t.Run("чужой пост не изменяется", func(t *testing.T) {
		_, err := storage.UpdatePost(createUserContext(strangerID), fmt.Sprint(postID), model.PostInput{
			Title:   "hacked",
			Text:    "hacked",
			PubDate: pubDate,
		})
		assert.ErrorIs(t, err, post.ErrNotAuthor)

		var p models.Post
		require.NoError(t, DB.First(&p, "id = ?", postID).Error)
		assert.Equal(t, "edited", p.Title)
	})

	t.Run("несуществующий пост", func(t *testing.T) {
		_, err := storage.UpdatePost(createUserContext(authorID), "99999", model.PostInput{
			Title:   "x",
			Text:    "x",
			PubDate: pubDate,
		})
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})
}

func TestPostPostgresStorage_DeletePost_Cascade(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	strangerID := createTestUser(t, "stranger")
	catID := createTestCategory(t, "travel", true)

	postID := createTestPost(t, authorID, &catID, "to delete", time.Now().Add(-time.Hour), true)
	createTestComment(t, postID, strangerID, "first")
	createTestComment(t, postID, authorID, "second")

	storage := NewPostPostgresStorage()

	t.Run("не автор", func(t *testing.T) {
		err := storage.DeletePostByID(createUserContext(strangerID), fmt.Sprint(postID))
		assert.ErrorIs(t, err, post.ErrNotAuthor)
	})

	t.Run("автор удаляет пост вместе с комментариями", func(t *testing.T) {
		err := storage.DeletePostByID(createUserContext(authorID), fmt.Sprint(postID))
		require.NoError(t, err)

		_, err = storage.GetPostByID(fmt.Sprint(postID), &authorID)
		assert.ErrorIs(t, err, post.ErrPostNotFound)

		var count int
		require.NoError(t, DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error)
		assert.Equal(t, 0, count)
	})
}

func TestPostPostgresStorage_ListFeed(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	readerID := createTestUser(t, "reader")
	pubCatID := createTestCategory(t, "public-cat", true)
	hiddenCatID := createTestCategory(t, "hidden-cat", false)

	now := time.Now()
	createTestPost(t, authorID, &pubCatID, "oldest", now.Add(-3*time.Hour), true)
	newest := createTestPost(t, authorID, &pubCatID, "newest", now.Add(-time.Hour), true)
	// скрытые по каждой из причин — в ленту не попадают даже для автора
	createTestPost(t, authorID, &pubCatID, "draft", now.Add(-time.Hour), false)
	createTestPost(t, authorID, &pubCatID, "scheduled", now.Add(24*time.Hour), true)
	createTestPost(t, authorID, &hiddenCatID, "in hidden category", now.Add(-time.Hour), true)
	createTestPost(t, authorID, nil, "no category", now.Add(-time.Hour), true)

	createTestComment(t, newest, readerID, "nice")
	createTestComment(t, newest, authorID, "thanks")

	storage := NewPostPostgresStorage()

	// контракт ленты: страница собирается одним запросом
	var queries int
	DB.Callback().Query().After("gorm:query").Register("test:count_queries", func(*gorm.Scope) { queries++ })
	defer DB.Callback().Query().Remove("test:count_queries")

	page, err := storage.ListFeed(&authorID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, queries, "feed page must be built with a single query")

	// в ленте только публично видимые посты, новые впереди
	require.Len(t, page.Items, 2)
	assert.Equal(t, "newest", page.Items[0].Title)
	assert.Equal(t, "oldest", page.Items[1].Title)
	assert.False(t, page.HasMore)

	// количество комментариев приходит из того же запроса
	assert.Equal(t, 2, page.Items[0].CommentCount)
	assert.Equal(t, 0, page.Items[1].CommentCount)

	t.Run("равные даты упорядочены по ID", func(t *testing.T) {
		sameDate := now.Add(-2 * time.Hour)
		first := createTestPost(t, authorID, &pubCatID, "tie first", sameDate, true)
		second := createTestPost(t, authorID, &pubCatID, "tie second", sameDate, true)

		page, err := storage.ListFeed(nil, 1)
		require.NoError(t, err)
		require.Len(t, page.Items, 4)
		assert.Equal(t, fmt.Sprint(first), page.Items[1].ID)
		assert.Equal(t, fmt.Sprint(second), page.Items[2].ID)
	})
}

func TestPostPostgresStorage_ListFeed_Pagination(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	catID := createTestCategory(t, "travel", true)

	now := time.Now()
	for i := 0; i < pagination.PageSize+1; i++ {
		createTestPost(t, authorID, &catID, fmt.Sprintf("post %02d", i), now.Add(-time.Duration(i+1)*time.Minute), true)
	}

	storage := NewPostPostgresStorage()

	t.Run("первая страница полная", func(t *testing.T) {
		page, err := storage.ListFeed(nil, 1)
		require.NoError(t, err)
		assert.Len(t, page.Items, pagination.PageSize)
		assert.True(t, page.HasMore)
		assert.Equal(t, "post 00", page.Items[0].Title)
	})

	t.Run("вторая страница — остаток", func(t *testing.T) {
		page, err := storage.ListFeed(nil, 2)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.False(t, page.HasMore)
	})

	t.Run("страница за последней пуста", func(t *testing.T) {
		page, err := storage.ListFeed(nil, 3)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.False(t, page.HasMore)
	})

	t.Run("нулевая страница", func(t *testing.T) {
		_, err := storage.ListFeed(nil, 0)
		assert.ErrorIs(t, err, pagination.ErrInvalidPage)
	})

	t.Run("отрицательная страница", func(t *testing.T) {
		_, err := storage.ListFeed(nil, -1)
		assert.ErrorIs(t, err, pagination.ErrInvalidPage)
	})
}

func TestPostPostgresStorage_ListCategory(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	travelID := createTestCategory(t, "travel", true)
	foodID := createTestCategory(t, "food", true)
	createTestCategory(t, "hidden", false)

	now := time.Now()
	createTestPost(t, authorID, &travelID, "travel post", now.Add(-time.Hour), true)
	createTestPost(t, authorID, &foodID, "food post", now.Add(-time.Hour), true)
	createTestPost(t, authorID, &travelID, "travel draft", now.Add(-time.Hour), false)

	storage := NewPostPostgresStorage()

	t.Run("только посты своей категории", func(t *testing.T) {
		page, err := storage.ListCategory("travel", nil, 1)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "travel post", page.Items[0].Title)
	})

	t.Run("черновики не видны даже автору", func(t *testing.T) {
		page, err := storage.ListCategory("travel", &authorID, 1)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("скрытая категория неотличима от несуществующей", func(t *testing.T) {
		_, err := storage.ListCategory("hidden", nil, 1)
		assert.ErrorIs(t, err, category.ErrCategoryNotFound)

		_, err = storage.ListCategory("no-such", nil, 1)
		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	})
}

func TestPostPostgresStorage_ListProfile(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	strangerID := createTestUser(t, "stranger")
	catID := createTestCategory(t, "travel", true)

	now := time.Now()
	createTestPost(t, authorID, &catID, "published", now.Add(-time.Hour), true)
	createTestPost(t, authorID, &catID, "draft", now.Add(-time.Hour), false)
	createTestPost(t, authorID, &catID, "scheduled", now.Add(24*time.Hour), true)
	createTestPost(t, strangerID, &catID, "someone else", now.Add(-time.Hour), true)

	storage := NewPostPostgresStorage()

	t.Run("владелец видит все свои посты", func(t *testing.T) {
		page, err := storage.ListProfile("author", &authorID, 1)
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
	})

	t.Run("чужой видит только опубликованные", func(t *testing.T) {
		page, err := storage.ListProfile("author", &strangerID, 1)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "published", page.Items[0].Title)
	})

	t.Run("аноним видит только опубликованные", func(t *testing.T) {
		page, err := storage.ListProfile("author", nil, 1)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("несуществующий пользователь", func(t *testing.T) {
		_, err := storage.ListProfile("nobody", nil, 1)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
