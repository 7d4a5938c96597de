package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/user"
)

func TestUserPostgresStorage_RegisterUser(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	storage := NewUserPostgresStorage()

	profile, err := storage.RegisterUser("newuser", "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "newuser", profile.Username)
	assert.Equal(t, "new@example.com", profile.Email)

	t.Run("занятое имя", func(t *testing.T) {
		_, err := storage.RegisterUser("newuser", "other@example.com", "password123")
		assert.ErrorIs(t, err, user.ErrUsernameTaken)
	})

	t.Run("невалидные данные", func(t *testing.T) {
		_, err := storage.RegisterUser("", "bad@example.com", "password123")
		var vErr *model.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestUserPostgresStorage_LoginUser(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	t.Setenv("JWT_SECRET", "test-secret")

	storage := NewUserPostgresStorage()
	_, err := storage.RegisterUser("loginuser", "login@example.com", "password123")
	require.NoError(t, err)

	t.Run("успешный вход", func(t *testing.T) {
		token, err := storage.LoginUser("loginuser", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		_, err := storage.LoginUser("loginuser", "wrong")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("несуществующий пользователь", func(t *testing.T) {
		// ответ не отличается от неверного пароля
		_, err := storage.LoginUser("nobody", "password123")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestUserPostgresStorage_Profile(t *testing.T) {
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	storage := NewUserPostgresStorage()
	created, err := storage.RegisterUser("profileuser", "profile@example.com", "password123")
	require.NoError(t, err)

	t.Run("получение профиля", func(t *testing.T) {
		profile, err := storage.GetProfile("profileuser")
		require.NoError(t, err)
		assert.Equal(t, created.ID, profile.ID)
	})

	t.Run("несуществующий профиль", func(t *testing.T) {
		_, err := storage.GetProfile("nobody")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("редактирование своего профиля", func(t *testing.T) {
		userID := createTestUser(t, "editor")

		profile, err := storage.UpdateProfile(createUserContext(userID), model.ProfileInput{
			FirstName: "Иван",
			LastName:  "Петров",
			Email:     "editor-new@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "Иван", profile.FirstName)
		assert.Equal(t, "Петров", profile.LastName)
		assert.Equal(t, "editor-new@example.com", profile.Email)

		// чужие профили не затронуты
		other, err := storage.GetProfile("profileuser")
		require.NoError(t, err)
		assert.Equal(t, "profile@example.com", other.Email)
	})
}
