package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/db"
)

func TestCreateHotelValidation(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	region := seedPublishedRegion(t, api, "Algarve")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "missing region", body: map[string]any{"name": "Casa"}, want: http.StatusBadRequest},
		{name: "too many stars", body: map[string]any{"name": "Casa", "region_id": region.ID, "stars": 7}, want: http.StatusBadRequest},
		{name: "bad slug", body: map[string]any{"name": "Casa", "region_id": region.ID, "slug": "Casa Azul"}, want: http.StatusBadRequest},
		{name: "price without currency", body: map[string]any{"name": "Casa", "region_id": region.ID, "price_from": 9900}, want: http.StatusBadRequest},
		{name: "unknown region", body: map[string]any{"name": "Casa", "region_id": 999}, want: http.StatusNotFound},
		{name: "valid", body: map[string]any{"name": "Casa Azul", "region_id": region.ID, "stars": 4, "price_from": 9900, "currency": "eur"}, want: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := callHandler(api.CreateHotel, http.MethodPost, "/admin/api/hotels", tt.body, nil)
			expectStatus(t, w, tt.want)
		})
	}
}

func TestDuplicateSlugConflicts(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	body := map[string]any{"name": "Douro Valley", "slug": "douro"}
	expectStatus(t, callHandler(api.CreateRegion, http.MethodPost, "/admin/api/regions", body, nil), http.StatusCreated)
	expectStatus(t, callHandler(api.CreateRegion, http.MethodPost, "/admin/api/regions", body, nil), http.StatusConflict)
}

func TestDeleteRegionInUse(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	region := seedPublishedRegion(t, api, "Madeira")
	w := callHandler(api.CreateActivity, http.MethodPost, "/admin/api/activities",
		map[string]any{"title": "Levada walk", "region_id": region.ID, "duration_minutes": 180}, nil)
	expectStatus(t, w, http.StatusCreated)

	w = callHandler(api.DeleteRegion, http.MethodDelete, "/admin/api/regions/1", nil, idParams(region.ID))
	expectStatus(t, w, http.StatusConflict)
}

func TestMutationsInvalidateTaggedCache(t *testing.T) {
	api, _, store := setupTestAPI(t)
	region := seedPublishedRegion(t, api, "Azores")
	ctx := context.Background()

	if err := store.Set(ctx, "page:/api/hotels", []byte("{}"), 0, TagHotel); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	if err := store.Set(ctx, "page:/api/pages/about", []byte("{}"), 0, TagPage); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	w := callHandler(api.CreateHotel, http.MethodPost, "/admin/api/hotels",
		map[string]any{"name": "Lagoa Lodge", "region_id": region.ID}, nil)
	expectStatus(t, w, http.StatusCreated)

	if _, ok, _ := store.Get(ctx, "page:/api/hotels"); ok {
		t.Fatal("expected hotel listing to be invalidated")
	}
	if _, ok, _ := store.Get(ctx, "page:/api/pages/about"); !ok {
		t.Fatal("expected unrelated page cache to survive")
	}
}

func TestVideoRejectsUnsupportedURL(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	w := callHandler(api.CreateVideo, http.MethodPost, "/admin/api/videos",
		map[string]any{"title": "Sunset", "source_url": "https://example.com/video.mp4"}, nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = callHandler(api.CreateVideo, http.MethodPost, "/admin/api/videos",
		map[string]any{"title": "Sunset", "source_url": "https://youtu.be/dQw4w9WgXcQ", "status": "published"}, nil)
	expectStatus(t, w, http.StatusCreated)
	video := decodeBody(t, w)["video"].(map[string]any)
	if video["platform"] != "youtube" {
		t.Fatalf("expected youtube platform, got %v", video["platform"])
	}
}

func TestGalleryPhotoEndpoints(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	w := callHandler(api.CreateGallery, http.MethodPost, "/admin/api/galleries", map[string]any{"title": "Harbour"}, nil)
	expectStatus(t, w, http.StatusCreated)
	galleryID := uint(decodeBody(t, w)["gallery"].(map[string]any)["id"].(float64))

	var photoIDs []uint
	for i := 0; i < 2; i++ {
		w = callHandler(api.AddPhoto, http.MethodPost, "/admin/api/galleries/1/photos",
			map[string]any{"image_url": fmt.Sprintf("/static/uploads/p%d.jpg", i), "image_width": 800, "image_height": 600},
			idParams(galleryID))
		expectStatus(t, w, http.StatusCreated)
		photoIDs = append(photoIDs, uint(decodeBody(t, w)["photo"].(map[string]any)["id"].(float64)))
	}

	w = callHandler(api.ReorderPhotos, http.MethodPut, "/admin/api/galleries/1/photos/order",
		map[string]any{"ids": []uint{photoIDs[1], photoIDs[0]}}, idParams(galleryID))
	expectStatus(t, w, http.StatusOK)

	params := append(idParams(galleryID), gin.Param{Key: "photoID", Value: fmt.Sprint(photoIDs[0])})
	w = callHandler(api.DeletePhoto, http.MethodDelete, "/admin/api/galleries/1/photos/1", nil, params)
	expectStatus(t, w, http.StatusOK)

	w = callHandler(api.DeletePhoto, http.MethodDelete, "/admin/api/galleries/1/photos/1", nil, params)
	expectStatus(t, w, http.StatusNotFound)
}

func TestHeroSlideReorderRequiresEverySlide(t *testing.T) {
	api, _, _ := setupTestAPI(t)

	var ids []uint
	for _, title := range []string{"Surf", "Hike", "Wine"} {
		w := callHandler(api.CreateHeroSlide, http.MethodPost, "/admin/api/hero-slides",
			map[string]any{"kind": "custom", "title": title, "image_url": "/static/uploads/" + strings.ToLower(title) + ".jpg"}, nil)
		expectStatus(t, w, http.StatusCreated)
		ids = append(ids, uint(decodeBody(t, w)["slide"].(map[string]any)["id"].(float64)))
	}

	w := callHandler(api.ReorderHeroSlides, http.MethodPut, "/admin/api/hero-slides/order", map[string]any{"ids": ids[:2]}, nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = callHandler(api.ReorderHeroSlides, http.MethodPut, "/admin/api/hero-slides/order",
		map[string]any{"ids": []uint{ids[2], ids[0], ids[1]}}, nil)
	expectStatus(t, w, http.StatusOK)

	slides, err := api.heroSlides.List()
	if err != nil {
		t.Fatalf("list slides: %v", err)
	}
	if slides[0].ID != ids[2] {
		t.Fatalf("expected slide %d first, got %d", ids[2], slides[0].ID)
	}
}

func TestReplaceContentLinks(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	author := seedAuthor(t, api)
	region := seedPublishedRegion(t, api, "Porto")
	post := seedPublishedPost(t, api, author.ID, "Port cellars", "Tasting notes")

	body := map[string]any{
		"source":  map[string]any{"type": db.ContentTypeRegion, "id": region.ID},
		"targets": []map[string]any{{"type": db.ContentTypePost, "id": post.ID}, {"type": db.ContentTypePost, "id": post.ID}},
	}
	w := callHandler(api.ReplaceContentLinks, http.MethodPut, "/admin/api/links", body, nil)
	expectStatus(t, w, http.StatusOK)
	links := decodeBody(t, w)["links"].([]any)
	if len(links) != 1 {
		t.Fatalf("expected duplicate targets to collapse, got %d links", len(links))
	}

	bad := map[string]any{
		"source":  map[string]any{"type": db.ContentTypeRegion, "id": region.ID},
		"targets": []map[string]any{{"type": db.ContentTypeHotel, "id": 1}},
	}
	expectStatus(t, callHandler(api.ReplaceContentLinks, http.MethodPut, "/admin/api/links", bad, nil), http.StatusBadRequest)
}
