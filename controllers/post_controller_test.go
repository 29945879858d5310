package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"adboard/config"
	"adboard/models"
	"adboard/routes"
	"adboard/service"
	"adboard/storage"
	"adboard/utils"
)

const adminPassword = "open-sesame"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	images *storage.ImageStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := utils.HashPassword(adminPassword)
	require.NoError(t, err)
	config.SetForTesting(config.AppConfig{
		AppPort:            "0",
		JWTSecret:          "test-secret",
		AdminUsername:      "admin",
		AdminPasswordHash:  hash,
		AdminContact:       "call the office",
		UploadDir:          t.TempDir(),
		MaxUploadMB:        1,
		RateLimitPerMinute: 6000,
		AllowedOrigins:     []string{"*"},
		GinMode:            "test",
		RedisHost:          "127.0.0.1",
		RedisPort:          6379,
	})

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}))

	images, err := storage.NewImageStore(config.Get().UploadDir, 1024*1024)
	require.NoError(t, err)
	posts := service.NewPostService(storage.NewPostRepository(db), images)

	return &testServer{
		router: routes.SetupRouter(posts, images),
		images: images,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "admin",
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (s *testServer) upload(t *testing.T, token, filename string, payload []byte) (string, int) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		return "", w.Code
	}
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Filename, w.Code
}

func postBody(category string, ts int64, images ...string) map[string]interface{} {
	if images == nil {
		images = []string{}
	}
	return map[string]interface{}{
		"category":  category,
		"title":     "garden table",
		"content":   "solid wood, minor scratches",
		"contact":   "555-0100",
		"images":    images,
		"timestamp": ts,
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := srv.login(t)

	w = srv.do(t, http.MethodGet, "/api/check_login", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"logged_in":true`)

	w = srv.do(t, http.MethodGet, "/api/check_login", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"logged_in":false`)
}

func TestMutationsRequireAdmin(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized,
		srv.do(t, http.MethodPost, "/api/posts", "", postBody("furniture", 100)).Code)
	assert.Equal(t, http.StatusUnauthorized,
		srv.do(t, http.MethodPut, "/api/posts/1", "", postBody("furniture", 100)).Code)
	assert.Equal(t, http.StatusUnauthorized,
		srv.do(t, http.MethodDelete, "/api/posts/1", "", nil).Code)
	_, code := srv.upload(t, "not-a-token", "a.png", []byte("x"))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestPostLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	// unique category per run so a shared redis cache cannot leak between runs
	category := "furniture-" + uuid.NewString()

	img1, code := srv.upload(t, token, "one.png", []byte("first image"))
	require.Equal(t, http.StatusOK, code)
	img2, code := srv.upload(t, token, "two.jpg", []byte("second image"))
	require.Equal(t, http.StatusOK, code)
	img3, code := srv.upload(t, token, "three.webp", []byte("third image"))
	require.Equal(t, http.StatusOK, code)

	// create referencing img1, img2
	w := srv.do(t, http.MethodPost, "/api/posts", token, postBody(category, 100, img1, img2))
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var created struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.Post.ID)
	assert.Equal(t, models.ImageList{img1, img2}, created.Post.Images)

	// stored image is retrievable
	w = srv.do(t, http.MethodGet, "/uploads/"+img1, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "first image", w.Body.String())

	// update to [img2, img3]: img1 becomes orphaned and is removed
	id := created.Post.ID
	w = srv.do(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), token, postBody(category, 100, img2, img3))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, srv.images.Exists(img1))
	assert.True(t, srv.images.Exists(img2))
	assert.True(t, srv.images.Exists(img3))

	// listing shows the updated record
	w = srv.do(t, http.MethodGet, "/api/posts?category="+category, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var listing struct {
		Items []models.Post `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.Len(t, listing.Items, 1)
	assert.Equal(t, models.ImageList{img2, img3}, listing.Items[0].Images)

	// delete cascades to the remaining files
	w = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, srv.images.Exists(img2))
	assert.False(t, srv.images.Exists(img3))

	w = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/uploads/"+img2, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadValidation(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	_, code := srv.upload(t, token, "malware.exe", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = srv.upload(t, token, "noextension", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTooManyImagesRejected(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	images := make([]string, models.MaxImagesPerPost+1)
	for i := range images {
		images[i] = fmt.Sprintf("img%d.png", i)
	}
	w := srv.do(t, http.MethodPost, "/api/posts", token, postBody("furniture", 100, images...))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := srv.do(t, http.MethodGet, "/api/contact", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "call the office")
}
