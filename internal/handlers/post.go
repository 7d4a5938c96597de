package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/comment"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/post"
)

// Feed — главная лента: опубликованные посты в опубликованных категориях
// с наступившей датой публикации.
func Feed(posts post.PostStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := auth.ViewerFromContext(r.Context())

		page, err := posts.ListFeed(viewer, pageParam(r))
		if err != nil {
			writeListError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, page)
	}
}

// CategoryFeed — лента категории. Скрытая категория отдает 404,
// не раскрывая своего существования.
func CategoryFeed(posts post.PostStorage, categories category.CategoryStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]
		viewer := auth.ViewerFromContext(r.Context())

		cat, err := categories.GetCategoryBySlug(slug)
		if err != nil {
			if errors.Is(err, category.ErrCategoryNotFound) {
				respondNotFound(w)
				return
			}
			respondServerError(w, err)
			return
		}

		page, err := posts.ListCategory(slug, viewer, pageParam(r))
		if err != nil {
			writeListError(w, err, category.ErrCategoryNotFound)
			return
		}

		respondJSON(w, http.StatusOK, struct {
			Category *model.Category `json:"category"`
			Posts    *model.PostPage `json:"posts"`
		}{Category: cat, Posts: page})
	}
}

// PostDetail — страница поста вместе с тредом комментариев.
func PostDetail(posts post.PostStorage, comments comment.CommentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		viewer := auth.ViewerFromContext(r.Context())

		p, err := posts.GetPostByID(id, viewer)
		if err != nil {
			if errors.Is(err, post.ErrPostNotFound) {
				respondNotFound(w)
				return
			}
			respondServerError(w, err)
			return
		}

		thread, err := comments.GetComments(id, viewer)
		if err != nil {
			if errors.Is(err, post.ErrPostNotFound) {
				respondNotFound(w)
				return
			}
			respondServerError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, struct {
			Post     *model.Post      `json:"post"`
			Comments []*model.Comment `json:"comments"`
		}{Post: p, Comments: thread})
	}
}

// CreatePost — создание поста. Автор всегда текущий пользователь.
func CreatePost(posts post.PostStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var input model.PostInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := posts.CreatePost(r.Context(), input)
		if err != nil {
			if writeValidationError(w, input, err) {
				return
			}
			respondServerError(w, err)
			return
		}

		log.Printf("Post created: ID=%s, Title=%q, AuthorID=%d", created.ID, created.Title, userID)
		respondJSON(w, http.StatusCreated, created)
	}
}

// EditPost — редактирование поста. Чужой пост не изменяется:
// не-автор молча перенаправляется на страницу поста.
func EditPost(posts post.PostStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}

		id := mux.Vars(r)["id"]

		var input model.PostInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := posts.UpdatePost(r.Context(), id, input)
		if err != nil {
			writePostMutationError(w, r, id, input, err)
			return
		}

		respondJSON(w, http.StatusOK, updated)
	}
}

// DeletePost — удаление поста вместе с комментариями (каскад в хранилище).
func DeletePost(posts post.PostStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		id := mux.Vars(r)["id"]

		if err := posts.DeletePostByID(r.Context(), id); err != nil {
			writePostMutationError(w, r, id, nil, err)
			return
		}

		log.Printf("Post deleted: ID=%s, ActorID=%d", id, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// writePostMutationError — единая политика ошибок мутаций поста:
// не автор — тихий редирект на страницу поста, скрытое или отсутствующее —
// 404, невалидная форма — 400 с деталями по полям.
func writePostMutationError(w http.ResponseWriter, r *http.Request, id string, form interface{}, err error) {
	switch {
	case errors.Is(err, post.ErrNotAuthor):
		http.Redirect(w, r, postDetailPath(id), http.StatusSeeOther)
	case errors.Is(err, post.ErrPostNotFound):
		respondNotFound(w)
	default:
		if writeValidationError(w, form, err) {
			return
		}
		respondServerError(w, err)
	}
}
