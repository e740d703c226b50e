package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/auth"
	"github.com/tourcms/internal/cache"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
	"gorm.io/gorm"
)

func setupTestAPI(t *testing.T) (*API, *gorm.DB, *cache.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(db.DriverSQLite, fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano()), true)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tokens, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	store := cache.NewMemory()
	api := NewAPI(gdb, Options{
		UploadDir:            t.TempDir(),
		UploadURL:            "/static/uploads",
		SiteBaseURL:          "https://example.travel",
		CommentRatePerMinute: 2,
		Cache:                store,
		Tokens:               tokens,
	})
	return api, gdb, store
}

// callHandler 以 JSON 请求体直接调用单个 handler。
func callHandler(h gin.HandlerFunc, method, target string, body any, params gin.Params) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	h(c)
	return w
}

func idParams(id uint) gin.Params {
	return gin.Params{gin.Param{Key: "id", Value: fmt.Sprint(id)}}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func seedAuthor(t *testing.T, api *API) *db.User {
	t.Helper()
	user, err := api.auth.CreateUser(service.UserInput{Username: "author", Password: "password123", Role: db.RoleAdmin})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedPublishedRegion(t *testing.T, api *API, name string) *db.Region {
	t.Helper()
	region, err := api.regions.Create(service.RegionInput{Name: name, Status: db.StatusPublished})
	if err != nil {
		t.Fatalf("seed region: %v", err)
	}
	return region
}

func seedPublishedPost(t *testing.T, api *API, userID uint, title, content string) *db.Post {
	t.Helper()
	post, err := api.posts.Create(service.PostInput{
		Title:       title,
		Content:     content,
		UserID:      userID,
		CoverURL:    "/static/uploads/cover.jpg",
		CoverWidth:  1200,
		CoverHeight: 800,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	post, err = api.posts.Publish(post.ID, nil)
	if err != nil {
		t.Fatalf("publish post: %v", err)
	}
	return post
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func jsonReader(body any) *bytes.Reader {
	payload, _ := json.Marshal(body)
	return bytes.NewReader(payload)
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
