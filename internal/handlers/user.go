package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/model"
	"github.com/mvoronov/blogicum/internal/post"
	"github.com/mvoronov/blogicum/internal/user"
)

type registerForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register — регистрация нового пользователя.
func Register(users user.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form registerForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		profile, err := users.RegisterUser(form.Username, form.Email, form.Password)
		if err != nil {
			if errors.Is(err, user.ErrUsernameTaken) {
				respondError(w, http.StatusConflict, "username already taken")
				return
			}
			// пароль не возвращаем обратно
			form.Password = ""
			if writeValidationError(w, form, err) {
				return
			}
			respondServerError(w, err)
			return
		}

		log.Printf("User registered: Username=%q", profile.Username)
		respondJSON(w, http.StatusCreated, profile)
	}
}

// Login — вход, возвращает JWT.
func Login(users user.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form loginForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		token, err := users.LoginUser(form.Username, form.Password)
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				respondError(w, http.StatusUnauthorized, "invalid username or password")
				return
			}
			respondServerError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

// Profile — страница профиля: данные пользователя и его лента.
// Владелец видит все свои посты, остальные — только опубликованные.
func Profile(users user.UserStorage, posts post.PostStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := mux.Vars(r)["username"]
		viewer := auth.ViewerFromContext(r.Context())

		profile, err := users.GetProfile(username)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				respondNotFound(w)
				return
			}
			respondServerError(w, err)
			return
		}

		page, err := posts.ListProfile(username, viewer, pageParam(r))
		if err != nil {
			writeListError(w, err, user.ErrUserNotFound)
			return
		}

		respondJSON(w, http.StatusOK, struct {
			Profile *model.Profile  `json:"profile"`
			Posts   *model.PostPage `json:"posts"`
		}{Profile: profile, Posts: page})
	}
}

// EditProfile — редактирование собственного профиля.
func EditProfile(users user.UserStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}

		var input model.ProfileInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		profile, err := users.UpdateProfile(r.Context(), input)
		if err != nil {
			if writeValidationError(w, input, err) {
				return
			}
			respondServerError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, profile)
	}
}
