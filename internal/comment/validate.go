package comment

import (
	"strings"

	"github.com/mvoronov/blogicum/internal/model"
)

const maxTextLen = 2000

// ValidateText проверяет текст комментария. Общая для всех бэкендов.
func ValidateText(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.NewValidationError("text", "comment text must not be empty")
	}
	if len(trimmed) > maxTextLen {
		return model.NewValidationError("text", "comment text must not exceed 2000 characters")
	}
	return nil
}
