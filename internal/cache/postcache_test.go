package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/postdrop/postdrop-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func somePosts(email string, n int) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, models.Post{
			ID:       int64(i + 1),
			FileName: fmt.Sprintf("file-%d", i+1),
			Email:    email,
		})
	}
	return posts
}

func TestGetMissOnColdCache(t *testing.T) {
	c := New(10, time.Minute)

	posts, ok := c.Get("a@x.com")
	assert.False(t, ok)
	assert.Nil(t, posts)
}

func TestPutThenGet(t *testing.T) {
	c := New(10, time.Minute)

	c.Put("a@x.com", somePosts("a@x.com", 3))

	posts, ok := c.Get("a@x.com")
	require.True(t, ok)
	require.Len(t, posts, 3)
	assert.Equal(t, int64(1), posts[0].ID)
	assert.Equal(t, int64(3), posts[2].ID)
}

func TestGetReturnsACopy(t *testing.T) {
	c := New(10, time.Minute)
	c.Put("a@x.com", somePosts("a@x.com", 2))

	posts, ok := c.Get("a@x.com")
	require.True(t, ok)
	posts[0].FileName = "mutated"

	again, ok := c.Get("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "file-1", again[0].FileName)
}

func TestAppendOnLiveEntry(t *testing.T) {
	c := New(10, time.Minute)
	c.Put("a@x.com", somePosts("a@x.com", 1))

	applied := c.Append("a@x.com", models.Post{ID: 99, FileName: "file-99", Email: "a@x.com"})
	assert.True(t, applied)

	posts, ok := c.Get("a@x.com")
	require.True(t, ok)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(99), posts[1].ID)
}

func TestAppendIsNoOpWhenAbsent(t *testing.T) {
	c := New(10, time.Minute)

	applied := c.Append("a@x.com", models.Post{ID: 1})
	assert.False(t, applied)

	_, ok := c.Get("a@x.com")
	assert.False(t, ok, "append must not create an entry")
}

func TestRemoveFromLiveEntry(t *testing.T) {
	c := New(10, time.Minute)
	c.Put("a@x.com", somePosts("a@x.com", 3))

	applied := c.Remove("a@x.com", 2)
	assert.True(t, applied)

	posts, ok := c.Get("a@x.com")
	require.True(t, ok)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(1), posts[0].ID)
	assert.Equal(t, int64(3), posts[1].ID)
}

func TestRemoveIsNoOpWhenAbsent(t *testing.T) {
	c := New(10, time.Minute)

	assert.False(t, c.Remove("a@x.com", 1))
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New(10, 5*time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("a@x.com", somePosts("a@x.com", 2))

	// Just inside the TTL.
	c.now = func() time.Time { return base.Add(5*time.Minute - time.Second) }
	_, ok := c.Get("a@x.com")
	assert.True(t, ok)

	// At exactly t0+T the entry is treated as absent.
	c.now = func() time.Time { return base.Add(5 * time.Minute) }
	_, ok = c.Get("a@x.com")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on Get")
}

func TestExpiredEntryRejectsAppendAndRemove(t *testing.T) {
	c := New(10, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("a@x.com", somePosts("a@x.com", 1))
	c.now = func() time.Time { return base.Add(2 * time.Minute) }

	assert.False(t, c.Append("a@x.com", models.Post{ID: 9}))
	assert.False(t, c.Remove("a@x.com", 1))
}

func TestPutResetsExpiration(t *testing.T) {
	c := New(10, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("a@x.com", somePosts("a@x.com", 1))

	c.now = func() time.Time { return base.Add(50 * time.Second) }
	c.Put("a@x.com", somePosts("a@x.com", 2))

	// 90s after the first Put but only 40s after the second.
	c.now = func() time.Time { return base.Add(90 * time.Second) }
	posts, ok := c.Get("a@x.com")
	require.True(t, ok)
	assert.Len(t, posts, 2)
}

func TestEvictsLeastRecentlyUsedKey(t *testing.T) {
	c := New(2, time.Minute)

	c.Put("a@x.com", somePosts("a@x.com", 1))
	c.Put("b@x.com", somePosts("b@x.com", 1))

	// Touch a@x.com so b@x.com becomes the oldest.
	_, ok := c.Get("a@x.com")
	require.True(t, ok)

	c.Put("c@x.com", somePosts("c@x.com", 1))

	_, ok = c.Get("b@x.com")
	assert.False(t, ok, "least-recently-used key should be evicted")
	_, ok = c.Get("a@x.com")
	assert.True(t, ok)
	_, ok = c.Get("c@x.com")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestPurgeExpired(t *testing.T) {
	c := New(10, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("a@x.com", somePosts("a@x.com", 1))
	c.Put("b@x.com", somePosts("b@x.com", 1))

	c.now = func() time.Time { return base.Add(30 * time.Second) }
	c.Put("c@x.com", somePosts("c@x.com", 1))

	c.now = func() time.Time { return base.Add(70 * time.Second) }
	assert.Equal(t, 2, c.PurgeExpired())
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("c@x.com")
	assert.True(t, ok)
}

func TestConcurrentAppendsLoseNoUpdates(t *testing.T) {
	const n = 100
	c := New(10, time.Minute)
	c.Put("a@x.com", []models.Post{})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.True(t, c.Append("a@x.com", models.Post{ID: id, Email: "a@x.com"}))
		}(int64(i + 1))
	}
	wg.Wait()

	posts, ok := c.Get("a@x.com")
	require.True(t, ok)
	assert.Len(t, posts, n, "every concurrent append must land exactly once")
}

func TestConcurrentMixedOperations(t *testing.T) {
	c := New(4, time.Minute)
	users := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	for _, u := range users {
		c.Put(u, somePosts(u, 2))
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := users[i%len(users)]
			switch i % 4 {
			case 0:
				c.Get(u)
			case 1:
				c.Append(u, models.Post{ID: int64(100 + i), Email: u})
			case 2:
				c.Remove(u, 1)
			case 3:
				c.Put(u, somePosts(u, 1))
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 4, "capacity bound must hold under concurrency")
}
