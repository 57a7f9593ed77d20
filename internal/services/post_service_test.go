package services

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/postdrop/postdrop-be/internal/cache"
	"github.com/postdrop/postdrop-be/internal/filestore"
	"github.com/postdrop/postdrop-be/internal/models"
	"github.com/postdrop/postdrop-be/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePostStore is an in-memory storage.PostStore with sqlite-style
// autoincrement ids.
type fakePostStore struct {
	mu             sync.Mutex
	nextID         int64
	posts          map[int64]models.Post
	insertCalls    int
	findByEmailCnt int
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[int64]models.Post)}
}

func (f *fakePostStore) InsertPost(fileName, email string) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	f.nextID++
	post := models.Post{ID: f.nextID, FileName: fileName, Email: email, CreatedAt: time.Now()}
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostStore) FindPostsByEmail(email string) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findByEmailCnt++
	posts := []models.Post{}
	for id := int64(1); id <= f.nextID; id++ {
		if post, ok := f.posts[id]; ok && post.Email == email {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (f *fakePostStore) FindPostByID(id int64) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	return post, nil
}

func (f *fakePostStore) DeletePost(id int64) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	delete(f.posts, id)
	return post, nil
}

func (f *fakePostStore) ListFileNames() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, post := range f.posts {
		names = append(names, post.FileName)
	}
	return names, nil
}

func (f *fakePostStore) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

// fakeFileStore is an in-memory filestore.Store.
type fakeFileStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{blobs: make(map[string][]byte)}
}

func (f *fakeFileStore) Write(id string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[id] = append([]byte(nil), data...)
	return nil
}

func (f *fakeFileStore) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blobs[id]; !ok {
		return filestore.ErrNotExist
	}
	delete(f.blobs, id)
	return nil
}

func (f *fakeFileStore) Exists(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[id]
	return ok, nil
}

func (f *fakeFileStore) get(id string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[id]
	return data, ok
}

func (f *fakeFileStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

const maxUpload = 1 << 20

func newTestService() (*PostService, *fakePostStore, *fakeFileStore) {
	store := newFakePostStore()
	files := newFakeFileStore()
	svc := NewPostService(store, files, cache.New(100, 5*time.Minute), nil, maxUpload)
	return svc, store, files
}

func TestAddPostThenListIncludesBlob(t *testing.T) {
	svc, _, files := newTestService()
	payload := []byte("hello, upload")

	post, err := svc.AddPost("a@x.com", payload)
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, "a@x.com", post.Email)

	posts, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)

	data, ok := files.get(posts[0].FileName)
	require.True(t, ok)
	assert.Equal(t, payload, data)
}

func TestAddPostAppendsToWarmCache(t *testing.T) {
	svc, store, _ := newTestService()

	// Warm the cache with a listing.
	_, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	require.Equal(t, 1, store.findByEmailCnt)

	_, err = svc.AddPost("a@x.com", []byte("one"))
	require.NoError(t, err)

	posts, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, store.findByEmailCnt, "warm listing must be served from the cache")
}

func TestAddPostRejectsOversizedPayloadWithNoSideEffects(t *testing.T) {
	svc, store, files := newTestService()

	_, err := svc.AddPost("a@x.com", make([]byte, maxUpload+1))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	assert.Equal(t, 0, store.insertCalls, "no row may be inserted")
	assert.Equal(t, 0, files.count(), "no blob may be written")
}

func TestAddPostAtExactLimitSucceeds(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddPost("a@x.com", make([]byte, maxUpload))
	assert.NoError(t, err)
}

func TestDeletePostRemovesRowCacheAndBlob(t *testing.T) {
	svc, store, files := newTestService()

	post, err := svc.AddPost("a@x.com", []byte("bye"))
	require.NoError(t, err)
	_, err = svc.ListPosts("a@x.com")
	require.NoError(t, err)

	deleted, err := svc.DeletePost("a@x.com", post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, deleted.ID)
	assert.Equal(t, post.FileName, deleted.FileName)

	posts, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	assert.Empty(t, posts)

	assert.Equal(t, 0, store.rowCount())
	ok, err := files.Exists(post.FileName)
	require.NoError(t, err)
	assert.False(t, ok, "blob must be gone after delete")
}

func TestDeletePostUnknownIDHasNoSideEffects(t *testing.T) {
	svc, store, files := newTestService()

	_, err := svc.AddPost("a@x.com", []byte("keep me"))
	require.NoError(t, err)

	_, err = svc.DeletePost("a@x.com", 42)
	assert.ErrorIs(t, err, ErrPostNotFound)

	assert.Equal(t, 1, store.rowCount())
	assert.Equal(t, 1, files.count())
}

func TestDeletePostReportsMissingBlob(t *testing.T) {
	svc, store, files := newTestService()

	post, err := svc.AddPost("a@x.com", []byte("vanishing"))
	require.NoError(t, err)

	// Simulate drift: the blob disappears while the row remains.
	require.NoError(t, files.Delete(post.FileName))

	_, err = svc.DeletePost("a@x.com", post.ID)
	assert.ErrorIs(t, err, ErrBlobMissing)

	// The row is already gone; listings are corrected even though the blob
	// deletion found nothing.
	assert.Equal(t, 0, store.rowCount())
	posts, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListPostsReloadsAfterTTL(t *testing.T) {
	store := newFakePostStore()
	files := newFakeFileStore()
	svc := NewPostService(store, files, cache.New(100, 10*time.Millisecond), nil, maxUpload)

	_, err := svc.AddPost("a@x.com", []byte("x"))
	require.NoError(t, err)

	_, err = svc.ListPosts("a@x.com")
	require.NoError(t, err)
	require.Equal(t, 1, store.findByEmailCnt)

	time.Sleep(25 * time.Millisecond)

	posts, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 2, store.findByEmailCnt, "expired entry must force a reload")
}

func TestConcurrentAddsAgainstWarmCache(t *testing.T) {
	const n = 50
	svc, _, _ := newTestService()

	// Warm the cache so every add goes down the append path.
	_, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddPost("a@x.com", []byte("concurrent"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	posts, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	assert.Len(t, posts, n, "no append may be lost")

	seen := map[int64]bool{}
	for _, post := range posts {
		assert.False(t, seen[post.ID], "post %d appeared twice", post.ID)
		seen[post.ID] = true
	}
}

func TestUploadScenario(t *testing.T) {
	svc, _, files := newTestService()
	payload := bytes.Repeat([]byte("a"), 512*1024)

	post, err := svc.AddPost("a@x.com", payload)
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	_, err = uuid.Parse(post.FileName)
	assert.NoError(t, err, "file identifier should be a generated uuid")

	posts, err := svc.ListPosts("a@x.com")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(1), posts[0].ID)
	assert.Equal(t, post.FileName, posts[0].FileName)

	deleted, err := svc.DeletePost("a@x.com", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted.ID)

	posts, err = svc.ListPosts("a@x.com")
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 0, files.count())
}
