package service

import (
	"fmt"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

// ContentRef identifies one content item across tables.
type ContentRef struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

// ContentSummary is the card-sized view of any content item.
type ContentSummary struct {
	Type      string `json:"type"`
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug,omitempty"`
	Summary   string `json:"summary,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	URL       string `json:"url"`
	Published bool   `json:"-"`
}

// ContentResolver loads summaries for polymorphic references.
type ContentResolver struct {
	db *gorm.DB
}

// NewContentResolver creates a ContentResolver.
func NewContentResolver(gdb *gorm.DB) *ContentResolver {
	return &ContentResolver{db: gdb}
}

// ValidContentType reports whether t names a known content table.
func ValidContentType(t string) bool {
	switch t {
	case db.ContentTypePost, db.ContentTypeRegion, db.ContentTypeHotel, db.ContentTypeActivity,
		db.ContentTypeVideo, db.ContentTypeGallery, db.ContentTypePhoto:
		return true
	}
	return false
}

// Resolve returns the summary of a single item or ErrContentAbsent.
func (r *ContentResolver) Resolve(ref ContentRef) (*ContentSummary, error) {
	found, err := r.ResolveMany([]ContentRef{ref})
	if err != nil {
		return nil, err
	}
	summary, ok := found[ref]
	if !ok {
		return nil, ErrContentAbsent
	}
	return summary, nil
}

// ResolveMany batches lookups per content type. Missing items are absent
// from the returned map.
func (r *ContentResolver) ResolveMany(refs []ContentRef) (map[ContentRef]*ContentSummary, error) {
	grouped := make(map[string][]uint)
	for _, ref := range refs {
		if !ValidContentType(ref.Type) {
			return nil, ErrContentType
		}
		grouped[ref.Type] = append(grouped[ref.Type], ref.ID)
	}

	out := make(map[ContentRef]*ContentSummary, len(refs))
	add := func(s ContentSummary) {
		summary := s
		out[ContentRef{Type: s.Type, ID: s.ID}] = &summary
	}

	for contentType, ids := range grouped {
		if err := r.load(contentType, ids, add); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", contentType, err)
		}
	}
	return out, nil
}

func (r *ContentResolver) load(contentType string, ids []uint, add func(ContentSummary)) error {
	switch contentType {
	case db.ContentTypePost:
		var items []db.Post
		if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			add(ContentSummary{Type: contentType, ID: it.ID, Title: it.Title, Slug: it.Slug, Summary: it.Summary,
				ImageURL: it.CoverURL, URL: "/posts/" + it.Slug, Published: it.Status == db.StatusPublished})
		}
	case db.ContentTypeRegion:
		var items []db.Region
		if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			add(ContentSummary{Type: contentType, ID: it.ID, Title: it.Name, Slug: it.Slug, Summary: it.Summary,
				ImageURL: it.CoverURL, URL: "/regions/" + it.Slug, Published: it.Status == db.StatusPublished})
		}
	case db.ContentTypeHotel:
		var items []db.Hotel
		if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			add(ContentSummary{Type: contentType, ID: it.ID, Title: it.Name, Slug: it.Slug, Summary: it.Summary,
				ImageURL: it.CoverURL, URL: "/hotels/" + it.Slug, Published: it.Status == db.StatusPublished})
		}
	case db.ContentTypeActivity:
		var items []db.Activity
		if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			add(ContentSummary{Type: contentType, ID: it.ID, Title: it.Title, Slug: it.Slug, Summary: it.Summary,
				ImageURL: it.CoverURL, URL: "/activities/" + it.Slug, Published: it.Status == db.StatusPublished})
		}
	case db.ContentTypeVideo:
		var items []db.Video
		if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			add(ContentSummary{Type: contentType, ID: it.ID, Title: it.Title, Slug: it.Slug, Summary: it.Description,
				ImageURL: it.ThumbnailURL, URL: "/videos/" + it.Slug, Published: it.Status == db.StatusPublished})
		}
	case db.ContentTypeGallery:
		var items []db.Gallery
		if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			add(ContentSummary{Type: contentType, ID: it.ID, Title: it.Title, Slug: it.Slug, Summary: it.Description,
				ImageURL: it.CoverURL, URL: "/galleries/" + it.Slug, Published: it.Status == db.StatusPublished})
		}
	case db.ContentTypePhoto:
		var rows []struct {
			db.Photo
			GallerySlug   string
			GalleryTitle  string
			GalleryStatus string
		}
		if err := r.db.Table("photos").
			Select("photos.*, galleries.slug AS gallery_slug, galleries.title AS gallery_title, galleries.status AS gallery_status").
			Joins("JOIN galleries ON galleries.id = photos.gallery_id").
			Where("photos.id IN ?", ids).
			Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			title := row.Caption
			if title == "" {
				title = row.GalleryTitle
			}
			add(ContentSummary{Type: contentType, ID: row.ID, Title: title, ImageURL: row.ImageURL,
				URL: fmt.Sprintf("/galleries/%s#photo-%d", row.GallerySlug, row.ID),
				Published: row.GalleryStatus == db.StatusPublished})
		}
	default:
		return ErrContentType
	}
	return nil
}
