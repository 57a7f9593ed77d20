// Package cache provides the in-process post-list cache. The database
// remains the source of truth; entries here are a bounded, time-limited view
// of one user's posts and must reflect every mutation this process applied
// while the entry was live.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/postdrop/postdrop-be/internal/models"
)

type entry struct {
	email     string
	posts     []models.Post
	expiresAt time.Time
	elem      *list.Element
}

// PostCache maps a user's email to their cached post list. It is bounded to
// a fixed number of user keys, evicting the least-recently-used key on
// overflow (recency is updated by Put and by Get hits as well as live
// Append/Remove), and every entry expires a fixed TTL after it was last
// installed with Put. All methods are safe for concurrent use.
type PostCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*entry
	order    *list.List // front = most recently used

	now func() time.Time
}

// New creates a PostCache holding at most capacity user keys, each entry
// valid for ttl after Put.
func New(capacity int, ttl time.Duration) *PostCache {
	return &PostCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*entry),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached post list for email. The second return value is
// false when no live entry exists; an expired entry is dropped on the spot
// and reported as a miss. The returned slice is a copy the caller may keep.
func (c *PostCache) Get(email string) ([]models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(email)
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e.elem)

	posts := make([]models.Post, len(e.posts))
	copy(posts, e.posts)
	return posts, true
}

// Put installs or replaces the entry for email and resets its expiration.
// If a new key would exceed the capacity, the least-recently-used key is
// evicted first.
func (c *PostCache) Put(email string, posts []models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make([]models.Post, len(posts))
	copy(copied, posts)

	if e, ok := c.entries[email]; ok {
		e.posts = copied
		e.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(e.elem)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	e := &entry{
		email:     email,
		posts:     copied,
		expiresAt: c.now().Add(c.ttl),
	}
	e.elem = c.order.PushFront(e)
	c.entries[email] = e
}

// Append adds post to a live entry for email. It reports whether the append
// was applied; a cold or expired entry is left for the caller's miss path.
func (c *PostCache) Append(email string, post models.Post) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(email)
	if !ok {
		return false
	}
	e.posts = append(e.posts, post)
	c.order.MoveToFront(e.elem)
	return true
}

// Remove drops any post with the given id from a live entry for email. It
// reports whether an entry was present to mutate.
func (c *PostCache) Remove(email string, postID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(email)
	if !ok {
		return false
	}
	kept := e.posts[:0]
	for _, p := range e.posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	e.posts = kept
	c.order.MoveToFront(e.elem)
	return true
}

// PurgeExpired drops every expired entry and returns how many were removed.
func (c *PostCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for _, e := range c.entries {
		if now.After(e.expiresAt) || now.Equal(e.expiresAt) {
			c.drop(e)
			purged++
		}
	}
	return purged
}

// Len returns the number of resident user keys, expired entries included.
func (c *PostCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// live returns the entry for email if it is present and not expired. An
// expired entry is removed. Callers must hold c.mu.
func (c *PostCache) live(email string) (*entry, bool) {
	e, ok := c.entries[email]
	if !ok {
		return nil, false
	}
	now := c.now()
	if now.After(e.expiresAt) || now.Equal(e.expiresAt) {
		c.drop(e)
		return nil, false
	}
	return e, true
}

// evictOldest removes the least-recently-used entry. Callers must hold c.mu.
func (c *PostCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.drop(oldest.Value.(*entry))
}

func (c *PostCache) drop(e *entry) {
	c.order.Remove(e.elem)
	delete(c.entries, e.email)
}
