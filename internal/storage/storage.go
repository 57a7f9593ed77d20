// Package storage is the durable record store for users and posts. The
// database is the source of truth; the post cache is only ever a view of it.
package storage

import (
	"errors"

	"github.com/postdrop/postdrop-be/internal/models"
)

// ErrNotFound is returned when a queried record does not exist.
var ErrNotFound = errors.New("record not found")

// PostStore defines the durable operations the post service depends on.
type PostStore interface {
	InsertPost(fileName, email string) (models.Post, error)
	FindPostsByEmail(email string) ([]models.Post, error)
	FindPostByID(id int64) (models.Post, error)
	DeletePost(id int64) (models.Post, error)
	ListFileNames() ([]string, error)
}

// UserStore defines the durable operations the user service depends on.
type UserStore interface {
	InsertUser(user models.User) error
	FindUserByEmail(email string) (models.User, error)
	FindUserByID(id string) (models.User, error)
}
