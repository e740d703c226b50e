package service

import (
	"errors"
	"testing"
	"time"

	"github.com/tourcms/internal/db"
)

func TestPostService_ListCountsDrafts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := seedUser(t, gdb, "counter-tester")

	if _, err := svc.Create(PostInput{Title: "草稿标题", Content: "草稿正文", UserID: user.ID}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	seedPublishedPost(t, gdb, user.ID, "已发布标题")

	list, err := svc.List(PostFilter{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected total 2, got %d", list.Total)
	}
	if list.PublishedCount != 1 {
		t.Fatalf("expected published count 1, got %d", list.PublishedCount)
	}
	if list.DraftCount != 1 {
		t.Fatalf("expected draft count 1, got %d", list.DraftCount)
	}

	published, err := svc.ListPublished(PostFilter{})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if published.Total != 1 || published.Items[0].Title != "已发布标题" {
		t.Fatalf("unexpected published list: %+v", published.Items)
	}
}

func TestPostService_SlugDerivedAndUnique(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := seedUser(t, gdb, "slugger")

	first, err := svc.Create(PostInput{Title: "Café in Kraków", Content: "x", UserID: user.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if first.Slug != "cafe-in-krakow" {
		t.Fatalf("expected derived slug, got %q", first.Slug)
	}

	second, err := svc.Create(PostInput{Title: "Café in Kraków", Content: "y", UserID: user.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if second.Slug != "cafe-in-krakow-2" {
		t.Fatalf("expected suffixed slug, got %q", second.Slug)
	}

	if _, err := svc.Create(PostInput{Title: "Other", Slug: "cafe-in-krakow", Content: "z", UserID: user.ID}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if _, err := svc.Create(PostInput{Title: "Other", Slug: "Bad Slug!", Content: "z", UserID: user.ID}); !errors.Is(err, ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}

	// 更新时保留自身 slug 不算冲突
	updated, err := svc.Update(first.ID, PostInput{Title: "Café in Kraków", Slug: "cafe-in-krakow", Content: "new"})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}
	if updated.UserID != user.ID {
		t.Fatalf("update should keep author, got %d", updated.UserID)
	}
}

func TestPostService_PublishFlow(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := seedUser(t, gdb, "publisher")
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	post, err := svc.Create(PostInput{Title: "无封面", Content: "内容", UserID: user.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Status != db.StatusDraft {
		t.Fatalf("new posts should be drafts, got %s", post.Status)
	}
	if _, err := svc.Publish(post.ID, nil); !errors.Is(err, ErrCoverRequired) {
		t.Fatalf("expected ErrCoverRequired, got %v", err)
	}

	if _, err := svc.Update(post.ID, PostInput{
		Title: "无封面", Content: "内容", CoverURL: "https://example.com/a.jpg", CoverWidth: 800, CoverHeight: 600,
	}); err != nil {
		t.Fatalf("update post: %v", err)
	}
	published, err := svc.Publish(post.ID, nil)
	if err != nil {
		t.Fatalf("publish post: %v", err)
	}
	if published.Status != db.StatusPublished || published.PublishedAt == nil || !published.PublishedAt.Equal(fixed) {
		t.Fatalf("unexpected published state: %+v", published)
	}

	if _, err := svc.GetPublishedBySlug(published.Slug); err != nil {
		t.Fatalf("get published by slug: %v", err)
	}

	if _, err := svc.Unpublish(post.ID); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if _, err := svc.GetPublishedBySlug(published.Slug); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound after unpublish, got %v", err)
	}

	// 重新发布沿用最初的发布时间
	svc.now = func() time.Time { return fixed.Add(48 * time.Hour) }
	again, err := svc.Publish(post.ID, nil)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !again.PublishedAt.Equal(fixed) {
		t.Fatalf("expected original publish time, got %v", again.PublishedAt)
	}
}

func TestPostService_PublishWithCustomPublishedAt(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := seedUser(t, gdb, "scheduler")

	post, err := svc.Create(PostInput{
		Title: "定时", Content: "内容", UserID: user.ID,
		CoverURL: "https://example.com/a.jpg", CoverWidth: 800, CoverHeight: 600,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	custom := time.Date(2025, 12, 24, 18, 30, 0, 0, time.UTC)
	published, err := svc.Publish(post.ID, &custom)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !published.PublishedAt.Equal(custom) {
		t.Fatalf("expected %v, got %v", custom, published.PublishedAt)
	}
}

func TestPostService_FiltersByRegionAndTags(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := seedUser(t, gdb, "filterer")
	region := seedRegion(t, gdb, "Dolomites", db.StatusPublished)
	tag, err := NewTagService(gdb).Create("hiking")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if _, err := svc.Create(PostInput{Title: "In region", Content: "a", UserID: user.ID, RegionID: &region.ID, TagIDs: []uint{tag.ID}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(PostInput{Title: "Elsewhere", Content: "b", UserID: user.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(PostInput{Title: "Bad tag", Content: "c", UserID: user.ID, TagIDs: []uint{999}}); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
	if _, err := svc.Create(PostInput{Title: "Bad region", Content: "c", UserID: user.ID, RegionID: uintPtr(999)}); !errors.Is(err, ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}

	byRegion, err := svc.List(PostFilter{RegionID: region.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if byRegion.Total != 1 || byRegion.Items[0].Title != "In region" || byRegion.Items[0].Region == nil {
		t.Fatalf("unexpected region filter result: %+v", byRegion.Items)
	}

	byTag, err := svc.List(PostFilter{TagNames: []string{"hiking"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if byTag.Total != 1 || len(byTag.Items[0].Tags) != 1 {
		t.Fatalf("unexpected tag filter result: %+v", byTag.Items)
	}

	bySearch, err := svc.List(PostFilter{Search: "Elsew"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if bySearch.Total != 1 {
		t.Fatalf("expected search to match one post, got %d", bySearch.Total)
	}

	upper, err := svc.List(PostFilter{Search: "ELSEW"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if upper.Total != 1 || upper.Items[0].Title != "Elsewhere" {
		t.Fatalf("expected case-insensitive search hit, got %+v", upper.Items)
	}
}

func TestPostService_DeleteRemovesReferences(t *testing.T) {
	gdb := setupServiceTestDB(t)
	user := seedUser(t, gdb, "deleter")
	post := seedPublishedPost(t, gdb, user.ID, "Doomed")
	other := seedPublishedPost(t, gdb, user.ID, "Survivor")

	links := NewContentLinkService(gdb)
	if _, err := links.Link(ContentRef{Type: db.ContentTypePost, ID: other.ID}, ContentRef{Type: db.ContentTypePost, ID: post.ID}); err != nil {
		t.Fatalf("link: %v", err)
	}
	comments := NewCommentService(gdb, 0)
	if _, err := comments.Create(CommentInput{ContentType: db.ContentTypePost, ContentID: post.ID, AuthorName: "Ann", Body: "Nice"}); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := NewPostService(gdb).Delete(post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var linkCount, commentCount int64
	gdb.Model(&db.ContentLink{}).Count(&linkCount)
	gdb.Model(&db.Comment{}).Count(&commentCount)
	if linkCount != 0 || commentCount != 0 {
		t.Fatalf("expected references purged, got links=%d comments=%d", linkCount, commentCount)
	}
	if err := NewPostService(gdb).Delete(post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCalculateReadingTime(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one two three", 1},
		{repeatWords(200), 1},
		{repeatWords(201), 2},
	}
	for _, tc := range cases {
		if got := calculateReadingTime(tc.content); got != tc.want {
			t.Fatalf("calculateReadingTime(%d words) = %d, want %d", len(tc.content), got, tc.want)
		}
	}
}

func repeatWords(n int) string {
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, 'w', ' ')
	}
	return string(out)
}

func TestPostService_UpdateKeepsPublishedPostComplete(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)
	user := seedUser(t, gdb, "keeper")
	post := seedPublishedPost(t, gdb, user.ID, "Azulejo trail")

	full := PostInput{Title: "Azulejo trail", Content: "Tiles everywhere", CoverURL: "https://example.com/cover.jpg", CoverWidth: 1200, CoverHeight: 800}
	cases := []struct {
		name   string
		mutate func(in *PostInput)
		want   error
	}{
		{"empty content", func(in *PostInput) { in.Content = " " }, ErrInvalidPublishState},
		{"cover removed", func(in *PostInput) { in.CoverURL = "" }, ErrCoverRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := full
			tc.mutate(&input)
			if _, err := svc.Update(post.ID, input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	stored, err := svc.Get(post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if stored.Content == "" || stored.CoverURL == "" || stored.Status != db.StatusPublished {
		t.Fatalf("published post must be left intact, got %+v", stored)
	}

	if _, err := svc.Update(post.ID, full); err != nil {
		t.Fatalf("complete update should succeed: %v", err)
	}

	// 草稿允许保存不完整内容
	if _, err := svc.Unpublish(post.ID); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	draft := full
	draft.Content = ""
	draft.CoverURL = ""
	if _, err := svc.Update(post.ID, draft); err != nil {
		t.Fatalf("draft update should succeed: %v", err)
	}
}
