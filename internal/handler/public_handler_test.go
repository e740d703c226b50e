package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
)

func TestShowPostRendersPublishedOnly(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	author := seedAuthor(t, api)
	post := seedPublishedPost(t, api, author.ID, "Tiles of Lisbon", "## Azulejos\n\nhttps://youtu.be/dQw4w9WgXcQ\n")
	draft, err := api.posts.Create(service.PostInput{Title: "Unfinished", Content: "wip", UserID: author.ID})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	w := callHandler(api.ShowPost, http.MethodGet, "/api/posts/"+draft.Slug, nil, gin.Params{{Key: "slug", Value: draft.Slug}})
	expectStatus(t, w, http.StatusNotFound)

	w = callHandler(api.ShowPost, http.MethodGet, "/api/posts/"+post.Slug, nil, gin.Params{{Key: "slug", Value: post.Slug}})
	expectStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	rendered, _ := body["html"].(string)
	if !strings.Contains(rendered, "<h2") || !strings.Contains(rendered, "youtube.com/embed/dQw4w9WgXcQ") {
		t.Fatalf("unexpected rendered html %q", rendered)
	}
	if _, ok := body["comments"]; !ok {
		t.Fatal("expected comment thread in post detail")
	}
}

func TestShowRegionIncludesPublishedChildren(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	region := seedPublishedRegion(t, api, "Alentejo")
	if _, err := api.hotels.Create(service.HotelInput{Name: "Herdade", RegionID: region.ID, Status: db.StatusPublished}); err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	if _, err := api.hotels.Create(service.HotelInput{Name: "Hidden draft", RegionID: region.ID}); err != nil {
		t.Fatalf("create draft hotel: %v", err)
	}

	w := callHandler(api.ShowRegion, http.MethodGet, "/api/regions/"+region.Slug, nil, gin.Params{{Key: "slug", Value: region.Slug}})
	expectStatus(t, w, http.StatusOK)
	hotels := decodeBody(t, w)["hotels"].([]any)
	if len(hotels) != 1 {
		t.Fatalf("expected only the published hotel, got %d", len(hotels))
	}
}

func TestCreateCommentRateLimited(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	author := seedAuthor(t, api)
	post := seedPublishedPost(t, api, author.ID, "Night markets", "Street food")

	submit := func() *httptest.ResponseRecorder {
		body := map[string]any{
			"content_type": db.ContentTypePost,
			"content_id":   post.ID,
			"author_name":  "Lena",
			"body":         "Which market was your favourite?",
		}
		req := httptest.NewRequest(http.MethodPost, "/api/comments", jsonReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: "visitor-1"})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = req
		api.CreateComment(c)
		return w
	}

	expectStatus(t, submit(), http.StatusCreated)
	expectStatus(t, submit(), http.StatusCreated)
	w := submit()
	expectStatus(t, w, http.StatusTooManyRequests)
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	w = callHandler(api.ListCommentThread, http.MethodGet, "/api/comments?content_type=post&content_id="+itoa(post.ID), nil, nil)
	expectStatus(t, w, http.StatusOK)
	if count := decodeBody(t, w)["count"].(float64); count != 0 {
		t.Fatalf("pending comments must stay hidden, got %v", count)
	}
}

func TestCreateCommentWithoutCookieStillThrottled(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	author := seedAuthor(t, api)
	post := seedPublishedPost(t, api, author.ID, "Harbour walk", "Fishing boats at dawn")

	body := map[string]any{
		"content_type": db.ContentTypePost,
		"content_id":   post.ID,
		"author_name":  "Crawler",
		"body":         "Cheap flights here",
	}
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := callHandler(api.CreateComment, http.MethodPost, "/api/comments", body, nil)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 201, 201, 429 without a visitor cookie, got %v", codes)
	}
}

func TestRecordViewSetsVisitorCookie(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	region := seedPublishedRegion(t, api, "Sintra")

	w := callHandler(api.RecordView, http.MethodPost, "/api/views",
		map[string]any{"content_type": db.ContentTypeRegion, "content_id": region.ID}, nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Header().Get("Set-Cookie"), visitorCookieName) {
		t.Fatalf("expected visitor cookie, got %q", w.Header().Get("Set-Cookie"))
	}

	w = callHandler(api.RecordView, http.MethodPost, "/api/views",
		map[string]any{"content_type": db.ContentTypeRegion, "content_id": 999}, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestSitemapListsPublishedContent(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	region := seedPublishedRegion(t, api, "Comporta")

	w := callHandler(api.Sitemap, http.MethodGet, "/sitemap.xml", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "<loc>https://example.travel/regions/"+region.Slug+"</loc>") {
		t.Fatalf("expected region in sitemap, got %s", w.Body.String())
	}
}

func TestUploadImageDetectsDimensions(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	w := uploadFile(t, api, "photo.png", pngData.Bytes())
	expectStatus(t, w, http.StatusCreated)
	data := decodeBody(t, w)["data"].(map[string]any)
	if data["width"].(float64) != 40 || data["height"].(float64) != 30 {
		t.Fatalf("unexpected dimensions %v", data)
	}
	if url := data["url"].(string); !strings.HasPrefix(url, "/static/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url %q", url)
	}

	w = uploadFile(t, api, "notes.png", []byte("not an image"))
	expectStatus(t, w, http.StatusBadRequest)
}

func uploadFile(t *testing.T, api *API, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/api/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	api.UploadImage(c)
	return w
}
