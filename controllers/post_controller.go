package controllers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"adboard/models"
	"adboard/service"
	"adboard/storage"
	"adboard/utils"
)

// PostController exposes post CRUD and image upload/retrieval endpoints.
// All mutations go through the PostService so record and file state stay
// in agreement.
type PostController struct {
	posts  *service.PostService
	images *storage.ImageStore
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *service.PostService, images *storage.ImageStore) *PostController {
	return &PostController{posts: posts, images: images}
}

type postRequest struct {
	Category  string   `json:"category" binding:"required"`
	Title     string   `json:"title" binding:"required"`
	Content   string   `json:"content" binding:"required"`
	Contact   string   `json:"contact" binding:"required"`
	Images    []string `json:"images"`
	Timestamp int64    `json:"timestamp"`
}

// toModel sanitizes the request at the HTTP boundary; the service and
// stores treat the text fields as opaque.
func (r *postRequest) toModel() (*models.Post, error) {
	category := strings.TrimSpace(r.Category)
	title := utils.Sanitize(strings.TrimSpace(r.Title))
	content := utils.Sanitize(r.Content)
	contact := utils.Sanitize(strings.TrimSpace(r.Contact))
	if category == "" || title == "" || content == "" || contact == "" {
		return nil, errors.New("missing required field")
	}
	return &models.Post{
		Category:  category,
		Title:     title,
		Content:   content,
		Contact:   contact,
		Images:    models.ImageList(r.Images),
		Timestamp: r.Timestamp,
	}, nil
}

// ListPosts returns posts filtered by category, newest first. The "all"
// sentinel (or no filter) returns everything.
func (p *PostController) ListPosts(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))
	if category == "" {
		category = storage.CategoryAll
	}

	cacheKey := "cache:posts:list:cat=" + category
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.posts.List(category)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	payload := gin.H{"items": posts}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// CreatePost publishes a new post referencing previously uploaded images.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	post, err := req.toModel()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, err.Error())
		return
	}

	created, err := p.posts.Create(post)
	if err != nil {
		if errors.Is(err, service.ErrTooManyImages) {
			utils.Error(ctx, http.StatusBadRequest, 40022,
				fmt.Sprintf("at most %d images per post", models.MaxImagesPerPost))
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"post": created})
}

// UpdatePost replaces all fields of an existing post; image files dropped
// from the list are removed by the service.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid post id")
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	post, err := req.toModel()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, err.Error())
		return
	}

	updated, err := p.posts.Update(id, post)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrPostNotFound):
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
		case errors.Is(err, service.ErrTooManyImages):
			utils.Error(ctx, http.StatusBadRequest, 40026,
				fmt.Sprintf("at most %d images per post", models.MaxImagesPerPost))
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		}
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"post": updated})
}

// DeletePost removes a post and, best-effort, its image files.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid post id")
		return
	}

	if err := p.posts.Delete(id); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// UploadImage stores an uploaded image and returns its generated identifier.
func (p *PostController) UploadImage(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	id, err := p.images.Save(file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmptyFilename):
			utils.Error(ctx, http.StatusBadRequest, 40031, "no filename supplied")
		case errors.Is(err, storage.ErrInvalidExtension):
			utils.Error(ctx, http.StatusBadRequest, 40032, "unsupported file extension")
		case errors.Is(err, storage.ErrImageTooLarge):
			utils.Error(ctx, http.StatusBadRequest, 40033, "file too large")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to save file")
		}
		return
	}

	utils.Success(ctx, gin.H{"filename": id})
}

// GetImage streams a stored image by identifier.
func (p *PostController) GetImage(ctx *gin.Context) {
	id := ctx.Param("filename")

	info, err := p.images.Stat(id)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "image not found")
		return
	}
	rc, err := p.images.Retrieve(id)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "image not found")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(id))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.DataFromReader(http.StatusOK, info.Size(), contentType, rc, nil)
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
