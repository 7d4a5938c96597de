package post

import (
	"strings"

	"github.com/mvoronov/blogicum/internal/model"
)

const maxTitleLen = 256

// ValidateInput проверяет данные формы поста. Общая для всех бэкендов.
func ValidateInput(input model.PostInput) error {
	fields := make(map[string]string)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fields["title"] = "title must not be empty"
	} else if len(title) > maxTitleLen {
		fields["title"] = "title must not exceed 256 characters"
	}

	if strings.TrimSpace(input.Text) == "" {
		fields["text"] = "text must not be empty"
	}

	if input.PubDate.IsZero() {
		fields["pub_date"] = "publication date is required"
	}

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}
