package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/postdrop/postdrop-be/internal/auth"
	"github.com/postdrop/postdrop-be/internal/models"
	"github.com/postdrop/postdrop-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for signup and login.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// AuthPayload defines the structure for signup and login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the body returned by signup and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup handles new user registration and logs the user straight in.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.service.CreateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			http.Error(w, "Email already registered", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	h.writeToken(w, r, user, http.StatusCreated)
}

// Login handles user authentication and token generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "Incorrect email or password", http.StatusUnauthorized)
		return
	}

	h.writeToken(w, r, user, http.StatusOK)
}

// GetMe returns the account of the authenticated caller.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.service.GetUserByEmail(claims.Email)
	if err != nil {
		log.Error().Err(err).Str("email", claims.Email).Msg("User from token not found in DB")
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// writeToken issues a JWT for user and writes the token response, also
// setting it as a cookie for browser clients.
func (h *UserHandler) writeToken(w http.ResponseWriter, r *http.Request, user models.User, status int) {
	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(TokenResponse{AccessToken: token, TokenType: "bearer"})
}
