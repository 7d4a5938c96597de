package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvoronov/blogicum/internal/auth"
	"github.com/mvoronov/blogicum/internal/config"
	"github.com/mvoronov/blogicum/internal/routes"
	"github.com/mvoronov/blogicum/internal/storage/memory"
	"github.com/mvoronov/blogicum/internal/storage/postgres"
	"github.com/mvoronov/blogicum/models"
)

func main() {
	storageType := flag.String("storage", "memory", "Тип хранилища: memory или postgres")
	addr := flag.String("addr", ":8080", "Адрес HTTP-сервера")
	flag.Parse()

	// загружаем .env из нашего config.go
	config.LoadEnv()

	var stores routes.Stores

	switch *storageType {
	case "postgres":
		if err := postgres.InitDB(); err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		err := postgres.DB.AutoMigrate(
			&models.User{},
			&models.Category{},
			&models.Location{},
			&models.Post{},
			&models.Comment{},
		).Error
		if err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}

		log.Println("Используется PostgreSQL хранилище")
		stores = routes.Stores{
			Posts:      postgres.NewPostPostgresStorage(),
			Comments:   postgres.NewCommentPostgresStorage(),
			Users:      postgres.NewUserPostgresStorage(),
			Categories: postgres.NewCategoryPostgresStorage(),
			Locations:  postgres.NewLocationPostgresStorage(),
		}

	case "memory":
		log.Println("Используется in-memory хранилище")
		users := memory.NewUserMemoryStorage()
		categories := memory.NewCategoryMemoryStorage()
		locations := memory.NewLocationMemoryStorage()
		posts := memory.NewPostMemoryStorage(users, categories, locations)
		comments := memory.NewCommentMemoryStorage(posts, users)
		posts.AttachComments(comments)

		stores = routes.Stores{
			Posts:      posts,
			Comments:   comments,
			Users:      users,
			Categories: categories,
			Locations:  locations,
		}

	default:
		log.Fatalf("неизвестный тип хранилища: %s", *storageType)
	}

	// AuthMiddleware вытаскивает JWT из заголовка и кладет userID в context;
	// невалидный токен не ошибка — запрос идет дальше анонимным.
	router := auth.AuthMiddleware(routes.New(stores))

	server := &http.Server{
		Addr:    *addr,
		Handler: router,
	}

	go func() {
		log.Printf("Сервер запущен на http://localhost%s/", *addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Завершение...")

	if *storageType == "postgres" {
		postgres.CloseDB()
	}

	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Ошибка при завершении сервера: %v", err)
	}

	log.Println("Сервер остановлен корректно")
}
