package routes

import (
	"github.com/gorilla/mux"

	"github.com/mvoronov/blogicum/internal/category"
	"github.com/mvoronov/blogicum/internal/comment"
	"github.com/mvoronov/blogicum/internal/handlers"
	"github.com/mvoronov/blogicum/internal/location"
	"github.com/mvoronov/blogicum/internal/post"
	"github.com/mvoronov/blogicum/internal/user"
)

// Stores — набор хранилищ, которыми пользуются обработчики.
type Stores struct {
	Posts      post.PostStorage
	Comments   comment.CommentStorage
	Users      user.UserStorage
	Categories category.CategoryStorage
	Locations  location.LocationStorage
}

// New собирает таблицу маршрутов поверх переданных хранилищ.
func New(s Stores) *mux.Router {
	r := mux.NewRouter()

	// Публичные страницы.
	r.HandleFunc("/", handlers.Feed(s.Posts)).Methods("GET")
	r.HandleFunc("/category/{slug}/", handlers.CategoryFeed(s.Posts, s.Categories)).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/", handlers.PostDetail(s.Posts, s.Comments)).Methods("GET")
	r.HandleFunc("/profile/{username}/", handlers.Profile(s.Users, s.Posts)).Methods("GET")
	r.HandleFunc("/categories/", handlers.ListCategories(s.Categories)).Methods("GET")
	r.HandleFunc("/locations/", handlers.ListLocations(s.Locations)).Methods("GET")

	// Аутентификация.
	r.HandleFunc("/auth/register", handlers.Register(s.Users)).Methods("POST")
	r.HandleFunc("/auth/login", handlers.Login(s.Users)).Methods("POST")

	// Мутации постов.
	r.HandleFunc("/posts/create", handlers.CreatePost(s.Posts)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/edit", handlers.EditPost(s.Posts)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/delete", handlers.DeletePost(s.Posts)).Methods("POST")

	// Комментарии.
	r.HandleFunc("/posts/{id:[0-9]+}/comment", handlers.AddComment(s.Comments)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comments/{commentID:[0-9]+}/edit", handlers.EditComment(s.Comments)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/comments/{commentID:[0-9]+}/delete", handlers.DeleteComment(s.Comments)).Methods("POST")

	// Профиль.
	r.HandleFunc("/profile/edit", handlers.EditProfile(s.Users)).Methods("POST")

	return r
}
