package user

import (
	"strings"

	"github.com/mvoronov/blogicum/internal/model"
)

// ValidateRegistration проверяет данные регистрации.
func ValidateRegistration(username, email, password string) error {
	fields := make(map[string]string)

	if strings.TrimSpace(username) == "" {
		fields["username"] = "username must not be empty"
	}
	if strings.TrimSpace(email) == "" {
		fields["email"] = "email must not be empty"
	}
	if password == "" {
		fields["password"] = "password must not be empty"
	}

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

// ValidateProfileInput проверяет данные формы профиля.
func ValidateProfileInput(input model.ProfileInput) error {
	if strings.TrimSpace(input.Email) == "" {
		return model.NewValidationError("email", "email must not be empty")
	}
	return nil
}
