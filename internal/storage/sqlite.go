package storage

import (
	"database/sql"

	"github.com/postdrop/postdrop-be/internal/models"
)

// SQLiteStore implements PostStore and UserStore on a sql.DB.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// InsertPost creates a new post row and returns it with its assigned id.
func (s *SQLiteStore) InsertPost(fileName, email string) (models.Post, error) {
	stmt, err := s.db.Prepare("INSERT INTO posts(file_name, email) VALUES(?, ?)")
	if err != nil {
		return models.Post{}, err
	}
	defer stmt.Close()

	res, err := stmt.Exec(fileName, email)
	if err != nil {
		return models.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Post{}, err
	}
	return s.FindPostByID(id)
}

// FindPostsByEmail returns every post owned by email, oldest first.
func (s *SQLiteStore) FindPostsByEmail(email string) ([]models.Post, error) {
	rows, err := s.db.Query("SELECT id, file_name, email, created_at FROM posts WHERE email = ? ORDER BY id", email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.FileName, &post.Email, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// FindPostByID retrieves a single post, or ErrNotFound.
func (s *SQLiteStore) FindPostByID(id int64) (models.Post, error) {
	var post models.Post
	row := s.db.QueryRow("SELECT id, file_name, email, created_at FROM posts WHERE id = ?", id)
	err := row.Scan(&post.ID, &post.FileName, &post.Email, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

// DeletePost removes a post row and returns the deleted record, or
// ErrNotFound when no row with that id exists.
func (s *SQLiteStore) DeletePost(id int64) (models.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	var post models.Post
	row := tx.QueryRow("SELECT id, file_name, email, created_at FROM posts WHERE id = ?", id)
	if err := row.Scan(&post.ID, &post.FileName, &post.Email, &post.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}

	if _, err := tx.Exec("DELETE FROM posts WHERE id = ?", id); err != nil {
		return models.Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// ListFileNames returns the file identifiers of every stored post.
func (s *SQLiteStore) ListFileNames() ([]string, error) {
	rows, err := s.db.Query("SELECT file_name FROM posts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// InsertUser creates a new user row.
func (s *SQLiteStore) InsertUser(user models.User) error {
	stmt, err := s.db.Prepare("INSERT INTO users(id, email, password_hash) VALUES(?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Email, user.PasswordHash)
	return err
}

// FindUserByEmail retrieves a single user by email, including the password
// hash, or ErrNotFound.
func (s *SQLiteStore) FindUserByEmail(email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// FindUserByID retrieves a single user by id, or ErrNotFound.
func (s *SQLiteStore) FindUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
