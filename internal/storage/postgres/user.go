package postgres

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/user"
	"github.com/mvoronov/blogicum/models"
)

type UserPostgresStorage struct{}

func NewUserPostgresStorage() *UserPostgresStorage {
	return &UserPostgresStorage{}
}

func (s *UserPostgresStorage) RegisterUser(username, email, password string) (*model.Profile, error) {
	if err := user.ValidateRegistration(username, email, password); err != nil {
		return nil, err
	}

	// проверка - существует ли такой пользователь
	var existUser models.User
	err := DB.Where("username = ?", username).First(&existUser).Error
	if err == nil {
		return nil, user.ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	err = DB.Create(u).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return profileToModel(u), nil
}

func (s *UserPostgresStorage) LoginUser(username, password string) (string, error) {
	var u models.User
	err := DB.Where("username = ?", username).First(&u).Error
	if err != nil {
		// не раскрываем, что именно неверно — имя или пароль
		return "", user.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	if err != nil {
		return "", user.ErrInvalidCredentials
	}

	return auth.IssueToken(u.ID, u.Username)
}

func (s *UserPostgresStorage) GetProfile(username string) (*model.Profile, error) {
	var u models.User
	err := DB.Where("username = ?", username).First(&u).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("could not get user by username: %w", err)
	}

	return profileToModel(&u), nil
}

func (s *UserPostgresStorage) UpdateProfile(ctx context.Context, input model.ProfileInput) (*model.Profile, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	if err := user.ValidateProfileInput(input); err != nil {
		return nil, err
	}

	// редактировать можно только собственный профиль:
	// целевая запись определяется актором, а не данными формы
	var u models.User
	err = DB.First(&u, "id = ?", userID).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("could not get user: %w", err)
	}

	updates := map[string]interface{}{
		"first_name": input.FirstName,
		"last_name":  input.LastName,
		"email":      input.Email,
	}
	err = DB.Model(&u).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("could not update profile: %w", err)
	}

	return profileToModel(&u), nil
}

func profileToModel(u *models.User) *model.Profile {
	return &model.Profile{
		ID:        fmt.Sprint(u.ID),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
