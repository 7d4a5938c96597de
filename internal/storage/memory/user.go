package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/user"
	"github.com/mvoronov/blogicum/models"
)

// parseID переводит строковый ID из URL во внутренний uint.
func parseID(id string) (uint, bool) {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

type UserMemoryStorage struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	byName map[string]uint
	nextID uint // для хранения актуального ID
}

func NewUserMemoryStorage() *UserMemoryStorage {
	return &UserMemoryStorage{
		users:  make(map[uint]*models.User),
		byName: make(map[string]uint),
		nextID: 1,
	}
}

func (s *UserMemoryStorage) RegisterUser(username, email, password string) (*model.Profile, error) {
	if err := user.ValidateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[username]; exists {
		return nil, user.ErrUsernameTaken
	}

	u := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	u.ID = s.nextID
	s.nextID++

	s.users[u.ID] = u
	s.byName[username] = u.ID

	return profileToModel(u), nil
}

func (s *UserMemoryStorage) LoginUser(username, password string) (string, error) {
	s.mu.Lock()
	id, exists := s.byName[username]
	var u *models.User
	if exists {
		u = s.users[id]
	}
	s.mu.Unlock()

	// не раскрываем, что именно неверно — имя или пароль
	if u == nil {
		return "", user.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", user.ErrInvalidCredentials
	}

	return auth.IssueToken(u.ID, u.Username)
}

func (s *UserMemoryStorage) GetProfile(username string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byName[username]
	if !exists {
		return nil, user.ErrUserNotFound
	}
	return profileToModel(s.users[id]), nil
}

func (s *UserMemoryStorage) UpdateProfile(ctx context.Context, input model.ProfileInput) (*model.Profile, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get user id from context: %w", err)
	}

	if err := user.ValidateProfileInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// целевая запись определяется актором, чужой профиль недостижим
	u, exists := s.users[userID]
	if !exists {
		return nil, user.ErrUserNotFound
	}

	u.FirstName = input.FirstName
	u.LastName = input.LastName
	u.Email = input.Email

	return profileToModel(u), nil
}

// usernameByID — имя пользователя для сборки представлений постов и комментариев.
func (s *UserMemoryStorage) usernameByID(id uint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return "", false
	}
	return u.Username, true
}

// idByUsername — ID пользователя по имени (для лент профиля).
func (s *UserMemoryStorage) idByUsername(username string) (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byName[username]
	return id, exists
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
