package service

import (
	"errors"
	"testing"

	"github.com/tourcms/internal/db"
)

func TestContentLinkServiceLinkIsIdempotent(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewContentLinkService(gdb)
	user := seedUser(t, gdb, "linker")
	post := seedPublishedPost(t, gdb, user.ID, "Guide")
	region := seedRegion(t, gdb, "Sahara", db.StatusPublished)
	source := ContentRef{Type: db.ContentTypeRegion, ID: region.ID}
	target := ContentRef{Type: db.ContentTypePost, ID: post.ID}

	first, err := svc.Link(source, target)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	second, err := svc.Link(source, target)
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same row, got %d and %d", first.ID, second.ID)
	}

	var count int64
	gdb.Model(&db.ContentLink{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one link row, got %d", count)
	}

	if _, err := svc.Link(target, target); !errors.Is(err, ErrLinkSelf) {
		t.Fatalf("expected ErrLinkSelf, got %v", err)
	}
	if _, err := svc.Link(target, source); !errors.Is(err, ErrLinkTarget) {
		t.Fatalf("expected ErrLinkTarget, got %v", err)
	}
	if _, err := svc.Link(ContentRef{Type: db.ContentTypePhoto, ID: 1}, target); !errors.Is(err, ErrLinkSource) {
		t.Fatalf("expected ErrLinkSource, got %v", err)
	}
	if _, err := svc.Link(source, ContentRef{Type: db.ContentTypeVideo, ID: 404}); !errors.Is(err, ErrContentAbsent) {
		t.Fatalf("expected ErrContentAbsent, got %v", err)
	}

	if err := svc.Unlink(source, target); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	links, err := svc.List(source, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected no links, got %+v", links)
	}
}

func TestContentLinkServiceReplaceAndList(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewContentLinkService(gdb)
	user := seedUser(t, gdb, "linker")
	a := seedPublishedPost(t, gdb, user.ID, "A")
	b := seedPublishedPost(t, gdb, user.ID, "B")
	hotelRegion := seedRegion(t, gdb, "Alps", db.StatusPublished)
	hotel, err := NewHotelService(gdb).Create(HotelInput{Name: "Chalet", RegionID: hotelRegion.ID, Status: db.StatusPublished})
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	video, err := NewVideoService(gdb).Create(VideoInput{Title: "Ski", SourceURL: "https://vimeo.com/1"})
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	source := ContentRef{Type: db.ContentTypeHotel, ID: hotel.ID}

	if err := svc.Replace(source, []ContentRef{
		{Type: db.ContentTypeVideo, ID: video.ID},
		{Type: db.ContentTypePost, ID: b.ID},
		{Type: db.ContentTypePost, ID: a.ID},
		{Type: db.ContentTypePost, ID: b.ID},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	all, err := svc.List(source, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Type != db.ContentTypeVideo || all[1].ID != b.ID || all[2].ID != a.ID {
		t.Fatalf("unexpected links: %+v", all)
	}

	public, err := svc.List(source, true)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("draft video should be hidden publicly, got %+v", public)
	}

	// 失败的替换不改变原有关联
	if err := svc.Replace(source, []ContentRef{{Type: db.ContentTypePost, ID: a.ID}, {Type: db.ContentTypePost, ID: 999}}); !errors.Is(err, ErrContentAbsent) {
		t.Fatalf("expected ErrContentAbsent, got %v", err)
	}
	all, _ = svc.List(source, false)
	if len(all) != 3 {
		t.Fatalf("failed replace should keep links, got %d", len(all))
	}

	if err := NewPostService(gdb).Delete(b.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	all, _ = svc.List(source, false)
	if len(all) != 2 {
		t.Fatalf("deleted target should disappear, got %+v", all)
	}

	if err := svc.Replace(source, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	all, _ = svc.List(source, false)
	if len(all) != 0 {
		t.Fatalf("expected cleared links, got %+v", all)
	}
}
