package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

type User struct {
	gorm.Model
	Username  string `gorm:"unique"`
	Email     string `gorm:"unique"`
	Password  string
	FirstName string
	LastName  string
	Posts     []Post    `gorm:"foreignkey:UserID"`
	Comments  []Comment `gorm:"foreignkey:UserID"`
}

type Location struct {
	gorm.Model
	Name        string
	IsPublished bool `gorm:"default:true"`
}

type Category struct {
	gorm.Model
	Title       string
	Description string
	Slug        string `gorm:"unique"`
	IsPublished bool   `gorm:"default:true"`
	Posts       []Post `gorm:"foreignkey:CategoryID"`
}

type Post struct {
	gorm.Model
	Title       string
	Text        string
	PubDate     time.Time // дата публикации может быть в будущем (отложенная публикация)
	IsPublished bool      `gorm:"default:true"`
	UserID      uint
	CategoryID  *uint // NULL после удаления категории
	LocationID  *uint // NULL после удаления местоположения
	Image       string
	Comments    []Comment `gorm:"foreignkey:PostID"`
}

type Comment struct {
	gorm.Model
	Text        string
	IsPublished bool `gorm:"default:true"`
	PostID      uint
	UserID      uint
}
