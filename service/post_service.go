package service

import (
	"errors"

	"adboard/models"
	"adboard/utils"
)

// ErrTooManyImages is returned when a post references more images than allowed.
var ErrTooManyImages = errors.New("too many images per post")

// PostStore is the post record persistence contract satisfied by
// storage.PostRepository.
type PostStore interface {
	Create(post *models.Post) error
	Get(id uint) (*models.Post, error)
	List(category string) ([]models.Post, error)
	Update(id uint, post *models.Post) (*models.Post, error)
	Delete(id uint) (*models.Post, error)
}

// ImageStore is the image file contract the service needs. Delete must be
// idempotent and swallow I/O errors; the service never checks its outcome.
type ImageStore interface {
	Delete(identifier string)
	Exists(identifier string) bool
}

// PostService keeps post records and image files in agreement across
// create, update and delete. It holds no state of its own; it only
// sequences the two stores, so it can be safely re-entered after a
// partial failure.
type PostService struct {
	posts  PostStore
	images ImageStore
}

// NewPostService wires the service to its two stores.
func NewPostService(posts PostStore, images ImageStore) *PostService {
	return &PostService{posts: posts, images: images}
}

// Create persists a new post. Referenced image identifiers are trusted to
// come from a prior upload; no existence re-validation is performed.
func (s *PostService) Create(post *models.Post) (*models.Post, error) {
	if len(post.Images) > models.MaxImagesPerPost {
		return nil, ErrTooManyImages
	}
	if err := s.posts.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update replaces the post's fields and removes image files the new
// record no longer references.
//
// Orphaned files are deleted before the record update commits the new
// image list: a crash in between leaves a dangling reference (the record
// points at files that are gone, which the display layer tolerates)
// rather than deleting files a still-live record points at.
func (s *PostService) Update(id uint, post *models.Post) (*models.Post, error) {
	if len(post.Images) > models.MaxImagesPerPost {
		return nil, ErrTooManyImages
	}
	current, err := s.posts.Get(id)
	if err != nil {
		return nil, err
	}
	for _, orphan := range utils.Difference(current.Images, post.Images) {
		s.images.Delete(orphan)
	}
	return s.posts.Update(id, post)
}

// Delete removes the post record first, then its image files best-effort.
// A post with no backing record is invisible regardless of leftover
// files, so the record goes first; leftovers are reclaimable disk space.
func (s *PostService) Delete(id uint) error {
	prior, err := s.posts.Delete(id)
	if err != nil {
		return err
	}
	for _, img := range prior.Images {
		s.images.Delete(img)
	}
	return nil
}

// Get returns a single post by id.
func (s *PostService) Get(id uint) (*models.Post, error) {
	return s.posts.Get(id)
}

// List produces the listing view: exact category match, or every post for
// the "all" sentinel (an empty filter means "all"), newest first.
func (s *PostService) List(category string) ([]models.Post, error) {
	return s.posts.List(category)
}
