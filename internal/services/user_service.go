package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/postdrop/postdrop-be/internal/models"
	"github.com/postdrop/postdrop-be/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(email, password string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
}

// UserService provides business logic for account management.
type UserService struct {
	store storage.UserStore
}

// NewUserService creates a new UserService.
func NewUserService(store storage.UserStore) *UserService {
	return &UserService{store: store}
}

// CreateUser creates a new user, hashing their password. Returns
// ErrEmailTaken when the email is already registered.
func (s *UserService) CreateUser(email, password string) (models.User, error) {
	if _, err := s.store.FindUserByEmail(email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.store.InsertUser(user); err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("authentication failed: user not found")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return models.User{}, fmt.Errorf("authentication failed: invalid password")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByEmail retrieves a single user by email, sanitized for responses.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}
