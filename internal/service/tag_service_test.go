package service

import (
	"errors"
	"testing"

	"github.com/tourcms/internal/db"
)

func TestTagServiceCreateAssignsNextSortOrder(t *testing.T) {
	gdb := setupServiceTestDB(t)

	if err := gdb.Create(&db.Tag{Name: "已有标签", SortOrder: 5}).Error; err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}

	svc := NewTagService(gdb)
	tag, err := svc.Create("新标签")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if tag.SortOrder != 6 {
		t.Fatalf("expected sort_order=6, got %d", tag.SortOrder)
	}

	if _, err := svc.Create("  新标签 "); !errors.Is(err, ErrTagExists) {
		t.Fatalf("expected ErrTagExists, got %v", err)
	}
	if _, err := svc.Create("   "); !errors.Is(err, ErrTagNameMissing) {
		t.Fatalf("expected ErrTagNameMissing, got %v", err)
	}
}

func TestTagServiceListOrdersBySortOrder(t *testing.T) {
	gdb := setupServiceTestDB(t)

	tags := []db.Tag{
		{Name: "Zed", SortOrder: 0},
		{Name: "Alpha", SortOrder: 2},
		{Name: "Beta", SortOrder: 1},
	}
	if err := gdb.Create(&tags).Error; err != nil {
		t.Fatalf("failed to seed tags: %v", err)
	}

	list, err := NewTagService(gdb).List()
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(list))
	}
	if list[0].Name != "Zed" || list[1].Name != "Beta" || list[2].Name != "Alpha" {
		t.Fatalf("unexpected order: %+v", []string{list[0].Name, list[1].Name, list[2].Name})
	}
}

func TestTagServiceReorderUpdatesSortOrder(t *testing.T) {
	gdb := setupServiceTestDB(t)

	tags := []db.Tag{
		{Name: "A", SortOrder: 0},
		{Name: "B", SortOrder: 1},
		{Name: "C", SortOrder: 2},
	}
	if err := gdb.Create(&tags).Error; err != nil {
		t.Fatalf("failed to seed tags: %v", err)
	}

	svc := NewTagService(gdb)
	if err := svc.Reorder([]uint{tags[2].ID, tags[0].ID, tags[1].ID}); err != nil {
		t.Fatalf("reorder tags: %v", err)
	}

	list, err := svc.List()
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if list[0].Name != "C" || list[1].Name != "A" || list[2].Name != "B" {
		t.Fatalf("unexpected order after reorder: %+v", []string{list[0].Name, list[1].Name, list[2].Name})
	}

	if err := svc.Reorder([]uint{tags[0].ID, tags[0].ID}); !errors.Is(err, ErrOrderInvalid) {
		t.Fatalf("expected ErrOrderInvalid for duplicate ids, got %v", err)
	}
	if err := svc.Reorder([]uint{9999}); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestTagServiceDeleteBlockedWhileUsed(t *testing.T) {
	gdb := setupServiceTestDB(t)
	user := seedUser(t, gdb, "tagger")

	svc := NewTagService(gdb)
	used, err := svc.Create("海岛")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	unused, err := svc.Create("雪山")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	post, err := NewPostService(gdb).Create(PostInput{Title: "海岛攻略", Content: "内容", UserID: user.ID, TagIDs: []uint{used.ID}})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := svc.Delete(used.ID); !errors.Is(err, ErrTagInUse) {
		t.Fatalf("expected ErrTagInUse, got %v", err)
	}
	if err := svc.Delete(unused.ID); err != nil {
		t.Fatalf("delete unused tag: %v", err)
	}

	list, err := svc.List()
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(list) != 1 || list[0].PostCount != 1 {
		t.Fatalf("expected one tag with post_count=1, got %+v", list)
	}

	usage, err := svc.PublishedUsage()
	if err != nil {
		t.Fatalf("published usage: %v", err)
	}
	if len(usage) != 0 {
		t.Fatalf("draft posts should not count, got %+v", usage)
	}

	if err := gdb.Model(&db.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"cover_url": "https://example.com/c.jpg", "cover_width": 10, "cover_height": 10,
	}).Error; err != nil {
		t.Fatalf("set cover: %v", err)
	}
	if _, err := NewPostService(gdb).Publish(post.ID, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	usage, err = svc.PublishedUsage()
	if err != nil {
		t.Fatalf("published usage: %v", err)
	}
	if len(usage) != 1 || usage[0].Count != 1 {
		t.Fatalf("unexpected usage: %+v", usage)
	}
}
