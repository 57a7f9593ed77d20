package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/postdrop/postdrop-be/internal/auth"
	"github.com/postdrop/postdrop-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PostHandler handles HTTP requests for the post resource.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// Create handles a multipart file upload and records a post for it.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("email", claims.Email).Msg("Failed to read uploaded file")
		http.Error(w, "Failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	post, err := h.service.AddPost(claims.Email, data)
	if err != nil {
		if errors.Is(err, services.ErrPayloadTooLarge) {
			http.Error(w, "File size exceeds 1MB limit", http.StatusRequestEntityTooLarge)
			return
		}
		log.Error().Err(err).Str("email", claims.Email).Msg("Failed to add post")
		http.Error(w, "Failed to add post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

// List returns every post owned by the authenticated caller.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	posts, err := h.service.ListPosts(claims.Email)
	if err != nil {
		log.Error().Err(err).Str("email", claims.Email).Msg("Failed to list posts")
		http.Error(w, "Failed to list posts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

// Delete removes a post and its stored file.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.service.DeletePost(claims.Email, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			http.Error(w, "Post not found", http.StatusNotFound)
		case errors.Is(err, services.ErrBlobMissing):
			// Row-present-but-blob-gone is store drift, not a client mistake.
			log.Error().Err(err).Int64("post_id", id).Msg("Blob missing for deleted post")
			http.Error(w, "Stored file for post is missing", http.StatusInternalServerError)
		default:
			log.Error().Err(err).Int64("post_id", id).Msg("Failed to delete post")
			http.Error(w, "Failed to delete post", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}
