package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/postdrop/postdrop-be/internal/cache"
	"github.com/postdrop/postdrop-be/internal/filestore"
	"github.com/postdrop/postdrop-be/internal/models"
	"github.com/postdrop/postdrop-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	AddPost(email string, data []byte) (models.Post, error)
	ListPosts(email string) ([]models.Post, error)
	DeletePost(email string, id int64) (models.Post, error)
}

// PostService orchestrates uploads, listings and deletions, keeping the
// file store, the database and the post cache consistent. The database is
// always mutated before the cache so that a failure between the two can only
// leave the cache stale, never the database behind a cache that reported
// success; a stale entry heals itself on the next miss or expiry.
type PostService struct {
	store   storage.PostStore
	files   filestore.Store
	cache   *cache.PostCache
	events  EventServiceProvider
	maxSize int64
}

// NewPostService creates a new PostService. events may be nil.
func NewPostService(store storage.PostStore, files filestore.Store, postCache *cache.PostCache, events EventServiceProvider, maxSize int64) *PostService {
	return &PostService{
		store:   store,
		files:   files,
		cache:   postCache,
		events:  events,
		maxSize: maxSize,
	}
}

// AddPost stores an uploaded file and records a post for it. Returns
// ErrPayloadTooLarge, before any side effect, when data exceeds the size cap.
func (s *PostService) AddPost(email string, data []byte) (models.Post, error) {
	if int64(len(data)) > s.maxSize {
		return models.Post{}, ErrPayloadTooLarge
	}

	fileID := uuid.New().String()
	if err := s.files.Write(fileID, data); err != nil {
		return models.Post{}, fmt.Errorf("could not store uploaded file: %w", err)
	}

	post, err := s.store.InsertPost(fileID, email)
	if err != nil {
		return models.Post{}, fmt.Errorf("could not record post: %w", err)
	}

	// Best effort: a cold cache has nothing to append to and the next
	// listing reloads from the database anyway.
	if !s.cache.Append(email, post) {
		log.Debug().Str("email", email).Int64("post_id", post.ID).Msg("Cache cold, append skipped")
	}

	s.recordEvent("post.created", fmt.Sprintf("post %d uploaded (%d bytes)", post.ID, len(data)), email)
	return post, nil
}

// ListPosts returns every post owned by email, from the cache when a live
// entry exists, otherwise reloading from the database and repopulating the
// cache.
func (s *PostService) ListPosts(email string) ([]models.Post, error) {
	if posts, ok := s.cache.Get(email); ok {
		return posts, nil
	}

	posts, err := s.store.FindPostsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("could not load posts: %w", err)
	}
	s.cache.Put(email, posts)
	return posts, nil
}

// DeletePost removes the post row, corrects the cache, then deletes the
// blob. The blob goes last so a file-store failure cannot leave a deleted
// file still referenced by listings. Returns ErrPostNotFound when no row
// with that id exists, and ErrBlobMissing when the row was deleted but its
// blob had already vanished.
//
// TODO: decide whether to reject ids not owned by email; the id is currently
// trusted as-is and another user's post can be deleted through this path.
func (s *PostService) DeletePost(email string, id int64) (models.Post, error) {
	post, err := s.store.DeletePost(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, fmt.Errorf("could not delete post: %w", err)
	}

	if !s.cache.Remove(post.Email, post.ID) {
		log.Debug().Str("email", post.Email).Int64("post_id", post.ID).Msg("Cache cold, remove skipped")
	}

	if err := s.files.Delete(post.FileName); err != nil {
		if errors.Is(err, filestore.ErrNotExist) {
			log.Error().Str("file_id", post.FileName).Int64("post_id", post.ID).
				Msg("Post row deleted but its blob was already missing")
			return models.Post{}, ErrBlobMissing
		}
		return models.Post{}, fmt.Errorf("could not delete stored file %s: %w", post.FileName, err)
	}

	s.recordEvent("post.deleted", fmt.Sprintf("post %d deleted", post.ID), post.Email)
	return post, nil
}

// recordEvent logs an activity event without ever failing the operation.
func (s *PostService) recordEvent(eventType, message, email string) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(eventType, "info", message, &email); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
