package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"adboard/models"
)

// CategoryAll is the listing sentinel that disables category filtering.
const CategoryAll = "all"

// PostRepository owns the posts table. ID assignment relies on the
// database's auto-increment, which serializes allocation across
// concurrent creates.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a repository over an initialized gorm handle.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create persists a new post and fills in its assigned id.
func (r *PostRepository) Create(post *models.Post) error {
	post.ID = 0
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the post with the given id.
func (r *PostRepository) Get(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &post, nil
}

// List returns posts ordered by timestamp descending, ties broken by id
// descending. The "all" sentinel (or an empty filter) returns every post.
func (r *PostRepository) List(category string) ([]models.Post, error) {
	query := r.db.Order("timestamp DESC, id DESC")
	if category != "" && category != CategoryAll {
		query = query.Where("category = ?", category)
	}
	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return posts, nil
}

// Update replaces all mutable fields of the post with the given id and
// returns the updated record.
func (r *PostRepository) Update(id uint, post *models.Post) (*models.Post, error) {
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	current.Category = post.Category
	current.Title = post.Title
	current.Content = post.Content
	current.Contact = post.Contact
	current.Images = post.Images
	current.Timestamp = post.Timestamp
	if err := r.db.Save(current).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return current, nil
}

// Delete removes the post and returns its pre-deletion state so callers
// can act on the images it referenced. Deletion is final.
func (r *PostRepository) Delete(id uint) (*models.Post, error) {
	prior, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(&models.Post{}, id).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return prior, nil
}
