package service

import (
	"errors"
	"testing"

	"github.com/tourcms/internal/db"
)

func TestVideoServiceResolvesEmbed(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewVideoService(gdb)

	if _, err := svc.Create(VideoInput{Title: "Bad", SourceURL: "https://example.com/v.mp4"}); !errors.Is(err, ErrVideoURLUnsupported) {
		t.Fatalf("expected ErrVideoURLUnsupported, got %v", err)
	}
	if _, err := svc.Create(VideoInput{SourceURL: "https://youtu.be/x"}); !errors.Is(err, ErrVideoTitleMissing) {
		t.Fatalf("expected ErrVideoTitleMissing, got %v", err)
	}

	video, err := svc.Create(VideoInput{Title: "Sunrise over Bromo", SourceURL: "https://www.youtube.com/watch?v=bromo1", Status: db.StatusPublished})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if video.Platform != VideoPlatformYouTube || video.EmbedURL == "" || video.ThumbnailURL == "" {
		t.Fatalf("expected embed fields to be filled, got %+v", video)
	}

	updated, err := svc.Update(video.ID, VideoInput{
		Title: "Sunrise over Bromo", SourceURL: "https://vimeo.com/12345",
		ThumbnailURL: "https://example.com/thumb.jpg", Status: db.StatusPublished,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Platform != VideoPlatformVimeo || updated.ThumbnailURL != "https://example.com/thumb.jpg" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if _, err := svc.Create(VideoInput{Title: "Draft clip", SourceURL: "https://vimeo.com/999"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	latest, err := svc.Latest(10)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 1 {
		t.Fatalf("expected only published videos, got %d", len(latest))
	}

	vimeo, err := svc.List(VideoFilter{Platform: "VIMEO"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if vimeo.Total != 2 {
		t.Fatalf("expected two vimeo videos, got %d", vimeo.Total)
	}

	if err := svc.Delete(video.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(video.ID); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
}
