package user

import (
	"context"
	"errors"

	"github.com/mvoronov/blogicum/internal/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserStorage — регистрация, вход и профили.
// Учетные данные наружу не отдаются, LoginUser возвращает подписанный JWT.
type UserStorage interface {
	RegisterUser(username, email, password string) (*model.Profile, error)
	LoginUser(username, password string) (string, error) // JWT
	GetProfile(username string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, input model.ProfileInput) (*model.Profile, error)
}
