package service

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adboard/models"
	"adboard/storage"
)

// mockPostStore is an in-memory PostStore with the same filter/sort policy
// as the real repository.
type mockPostStore struct {
	mu     sync.Mutex
	posts  map[uint]models.Post
	nextID uint
	// fail makes every call return ErrStoreUnavailable
	fail bool
}

func newMockPostStore() *mockPostStore {
	return &mockPostStore{posts: map[uint]models.Post{}, nextID: 1}
}

func (m *mockPostStore) Create(post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return storage.ErrStoreUnavailable
	}
	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = *post
	return nil
}

func (m *mockPostStore) Get(id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, storage.ErrStoreUnavailable
	}
	post, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	return &post, nil
}

func (m *mockPostStore) List(category string) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, storage.ErrStoreUnavailable
	}
	var out []models.Post
	for _, p := range m.posts {
		if category == "" || category == storage.CategoryAll || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *mockPostStore) Update(id uint, post *models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, storage.ErrStoreUnavailable
	}
	current, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	current.Category = post.Category
	current.Title = post.Title
	current.Content = post.Content
	current.Contact = post.Contact
	current.Images = post.Images
	current.Timestamp = post.Timestamp
	m.posts[id] = current
	return &current, nil
}

func (m *mockPostStore) Delete(id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, storage.ErrStoreUnavailable
	}
	prior, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrPostNotFound
	}
	delete(m.posts, id)
	return &prior, nil
}

// mockImageStore records files and every Delete call, including calls for
// identifiers that no longer exist.
type mockImageStore struct {
	mu      sync.Mutex
	files   map[string]bool
	deletes []string
}

func newMockImageStore(ids ...string) *mockImageStore {
	files := map[string]bool{}
	for _, id := range ids {
		files[id] = true
	}
	return &mockImageStore{files: files}
}

func (m *mockImageStore) Delete(identifier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, identifier)
	delete(m.files, identifier)
}

func (m *mockImageStore) Exists(identifier string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[identifier]
}

func post(category string, ts int64, images ...string) *models.Post {
	return &models.Post{
		Category:  category,
		Title:     "title",
		Content:   "content",
		Contact:   "contact",
		Images:    models.ImageList(images),
		Timestamp: ts,
	}
}

func TestPostServiceCreate(t *testing.T) {
	t.Run("pass-through without image coordination", func(t *testing.T) {
		posts := newMockPostStore()
		images := newMockImageStore()
		svc := NewPostService(posts, images)

		created, err := svc.Create(post("furniture", 100, "img1.png", "img2.png"))
		require.NoError(t, err)
		assert.Equal(t, uint(1), created.ID)
		assert.Empty(t, images.deletes, "create must never touch the image store")

		// Identifiers are caller-trusted: a dangling reference is accepted.
		_, err = svc.Create(post("furniture", 101, "no-such-file.png"))
		assert.NoError(t, err)
	})

	t.Run("image count limit", func(t *testing.T) {
		posts := newMockPostStore()
		svc := NewPostService(posts, newMockImageStore())

		ten := make([]string, 10)
		for i := range ten {
			ten[i] = "img.png"
		}
		_, err := svc.Create(post("furniture", 100, ten...))
		assert.ErrorIs(t, err, ErrTooManyImages)
		assert.Empty(t, posts.posts, "rejected create must leave no record")

		nine := ten[:9]
		_, err = svc.Create(post("furniture", 100, nine...))
		assert.NoError(t, err)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		posts := newMockPostStore()
		posts.fail = true
		svc := NewPostService(posts, newMockImageStore())
		_, err := svc.Create(post("furniture", 100))
		assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	})
}

func TestPostServiceUpdate(t *testing.T) {
	t.Run("orphaned images are deleted, kept images remain", func(t *testing.T) {
		posts := newMockPostStore()
		images := newMockImageStore("img1.png", "img2.png", "img3.png")
		svc := NewPostService(posts, images)

		created, err := svc.Create(post("furniture", 100, "img1.png", "img2.png"))
		require.NoError(t, err)

		updated, err := svc.Update(created.ID, post("furniture", 100, "img2.png", "img3.png"))
		require.NoError(t, err)

		assert.Equal(t, models.ImageList{"img2.png", "img3.png"}, updated.Images)
		assert.False(t, images.Exists("img1.png"), "img1 became orphaned")
		assert.True(t, images.Exists("img2.png"))
		assert.True(t, images.Exists("img3.png"))
		assert.Equal(t, []string{"img1.png"}, images.deletes)
	})

	t.Run("every orphan is attempted, no early exit", func(t *testing.T) {
		posts := newMockPostStore()
		// b.png is already gone; its delete is attempted anyway and must
		// not stop a.png and c.png from being attempted.
		images := newMockImageStore("a.png", "c.png")
		svc := NewPostService(posts, images)

		created, err := svc.Create(post("furniture", 100, "a.png", "b.png", "c.png"))
		require.NoError(t, err)

		_, err = svc.Update(created.ID, post("furniture", 100))
		require.NoError(t, err)
		assert.Equal(t, []string{"a.png", "b.png", "c.png"}, images.deletes)
	})

	t.Run("unknown id deletes nothing", func(t *testing.T) {
		posts := newMockPostStore()
		images := newMockImageStore("img1.png")
		svc := NewPostService(posts, images)

		_, err := svc.Update(42, post("furniture", 100))
		assert.ErrorIs(t, err, storage.ErrPostNotFound)
		assert.Empty(t, images.deletes)
	})

	t.Run("image count limit checked before any deletion", func(t *testing.T) {
		posts := newMockPostStore()
		images := newMockImageStore("img1.png")
		svc := NewPostService(posts, images)

		created, err := svc.Create(post("furniture", 100, "img1.png"))
		require.NoError(t, err)

		ten := make([]string, 10)
		for i := range ten {
			ten[i] = "x.png"
		}
		_, err = svc.Update(created.ID, post("furniture", 100, ten...))
		assert.ErrorIs(t, err, ErrTooManyImages)
		assert.True(t, images.Exists("img1.png"))
	})
}

func TestPostServiceDelete(t *testing.T) {
	t.Run("record first, then cascade to images", func(t *testing.T) {
		posts := newMockPostStore()
		images := newMockImageStore("img4.png")
		svc := NewPostService(posts, images)

		created, err := svc.Create(post("furniture", 100, "img4.png"))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(created.ID))
		assert.False(t, images.Exists("img4.png"))

		_, err = svc.Get(created.ID)
		assert.ErrorIs(t, err, storage.ErrPostNotFound)
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		posts := newMockPostStore()
		images := newMockImageStore("img.png")
		svc := NewPostService(posts, images)

		created, err := svc.Create(post("furniture", 100, "img.png"))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(created.ID))
		deletesAfterFirst := len(images.deletes)

		err = svc.Delete(created.ID)
		assert.ErrorIs(t, err, storage.ErrPostNotFound)
		assert.Len(t, images.deletes, deletesAfterFirst, "failed delete must not touch images")
	})
}

func TestPostServiceList(t *testing.T) {
	posts := newMockPostStore()
	svc := NewPostService(posts, newMockImageStore())

	_, err := svc.Create(post("furniture", 100))
	require.NoError(t, err)
	_, err = svc.Create(post("electronics", 200))
	require.NoError(t, err)
	_, err = svc.Create(post("furniture", 150))
	require.NoError(t, err)

	all, err := svc.List("all")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	furniture, err := svc.List("furniture")
	require.NoError(t, err)
	require.Len(t, furniture, 2)
	assert.Equal(t, int64(150), furniture[0].Timestamp)
	assert.Equal(t, int64(100), furniture[1].Timestamp)

	// Empty filter means "all".
	everything, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}
