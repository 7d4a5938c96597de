package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mvoronov/blogicum/internal/comment"
	"github.com/mvoronov/blogicum/internal/post"
)

type commentForm struct {
	Text string `json:"text"`
}

// AddComment — добавление комментария к посту. Достаточно существования
// поста; автор комментария всегда текущий пользователь.
func AddComment(comments comment.CommentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		postID := mux.Vars(r)["id"]

		var form commentForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := comments.CreateComment(r.Context(), postID, form.Text)
		if err != nil {
			if errors.Is(err, post.ErrPostNotFound) {
				respondNotFound(w)
				return
			}
			if writeValidationError(w, form, err) {
				return
			}
			respondServerError(w, err)
			return
		}

		log.Printf("Comment created: ID=%s, PostID=%s, AuthorID=%d", created.ID, postID, userID)
		respondJSON(w, http.StatusCreated, created)
	}
}

// EditComment — редактирование своего комментария.
func EditComment(comments comment.CommentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}

		vars := mux.Vars(r)
		postID := vars["id"]
		commentID := vars["commentID"]

		var form commentForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := comments.UpdateComment(r.Context(), commentID, form.Text)
		if err != nil {
			writeCommentMutationError(w, r, postID, form, err)
			return
		}

		respondJSON(w, http.StatusOK, updated)
	}
}

// DeleteComment — удаление своего комментария.
func DeleteComment(comments comment.CommentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		vars := mux.Vars(r)
		postID := vars["id"]
		commentID := vars["commentID"]

		if err := comments.DeleteCommentByID(r.Context(), commentID); err != nil {
			writeCommentMutationError(w, r, postID, nil, err)
			return
		}

		log.Printf("Comment deleted: ID=%s, PostID=%s, ActorID=%d", commentID, postID, userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeCommentMutationError — та же политика, что и для постов:
// не-автор молча перенаправляется на страницу родительского поста.
func writeCommentMutationError(w http.ResponseWriter, r *http.Request, postID string, form interface{}, err error) {
	switch {
	case errors.Is(err, comment.ErrNotAuthor):
		http.Redirect(w, r, postDetailPath(postID), http.StatusSeeOther)
	case errors.Is(err, comment.ErrCommentNotFound):
		respondNotFound(w)
	default:
		if writeValidationError(w, form, err) {
			return
		}
		respondServerError(w, err)
	}
}
