package pagination

import "errors"

// PageSize — фиксированный размер страницы ленты.
const PageSize = 10

var ErrInvalidPage = errors.New("page number must be positive")

// Offset переводит номер страницы (с единицы) в смещение.
// Страница за пределами данных — это пустая страница, а не ошибка,
// поэтому здесь проверяется только нижняя граница.
func Offset(page int) (int, error) {
	if page < 1 {
		return 0, ErrInvalidPage
	}
	return (page - 1) * PageSize, nil
}
