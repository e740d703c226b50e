package service

import (
	"errors"
	"strings"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound     = errors.New("video not found")
	ErrVideoTitleMissing = errors.New("video title is required")
)

// VideoService handles video CRUD. Source links are resolved to embeddable
// player URLs on every save.
type VideoService struct {
	db *gorm.DB
}

// VideoFilter describes filters for listing videos.
type VideoFilter struct {
	Search   string
	Status   string
	Platform string
	RegionID uint
	Page     int
	PerPage  int
}

// VideoInput represents fields accepted when creating or updating a video.
type VideoInput struct {
	Title        string
	Slug         string
	Description  string
	SourceURL    string
	ThumbnailURL string
	RegionID     *uint
	Status       string
	SortOrder    *int
}

// NewVideoService creates a VideoService instance.
func NewVideoService(gdb *gorm.DB) *VideoService {
	return &VideoService{db: gdb}
}

// List returns videos matching the filter.
func (s *VideoService) List(filter VideoFilter) (ListResult[db.Video], error) {
	build := func() *gorm.DB {
		query := s.db.Model(&db.Video{})
		if status := strings.TrimSpace(filter.Status); status != "" {
			query = query.Where("videos.status = ?", status)
		}
		if platform := strings.ToLower(strings.TrimSpace(filter.Platform)); platform != "" {
			query = query.Where("videos.platform = ?", platform)
		}
		if filter.RegionID != 0 {
			query = query.Where("videos.region_id = ?", filter.RegionID)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := likePattern(search)
			query = query.Where("(LOWER(videos.title) LIKE ? OR LOWER(videos.description) LIKE ?)", like, like)
		}
		return query
	}
	return paginate[db.Video](build(), build().Preload("Region"), filter.Page, filter.PerPage, 12,
		"videos.sort_order asc", "videos.created_at desc")
}

// ListPublished returns published videos.
func (s *VideoService) ListPublished(filter VideoFilter) (ListResult[db.Video], error) {
	filter.Status = db.StatusPublished
	return s.List(filter)
}

// Latest returns the most recently created published videos.
func (s *VideoService) Latest(limit int) ([]db.Video, error) {
	if limit <= 0 {
		limit = 6
	}
	var items []db.Video
	if err := s.db.Where("status = ?", db.StatusPublished).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a video by id.
func (s *VideoService) Get(id uint) (*db.Video, error) {
	var item db.Video
	if err := s.db.Preload("Region").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetPublishedBySlug fetches a published video for the public site.
func (s *VideoService) GetPublishedBySlug(slug string) (*db.Video, error) {
	var item db.Video
	if err := s.db.Preload("Region").
		Where("slug = ? AND status = ?", strings.ToLower(strings.TrimSpace(slug)), db.StatusPublished).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new video.
func (s *VideoService) Create(input VideoInput) (*db.Video, error) {
	var item db.Video
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		if input.SortOrder == nil {
			order, err := nextSortOrder(tx, &db.Video{})
			if err != nil {
				return err
			}
			item.SortOrder = order
		}
		return tx.Omit("Region").Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(item.ID)
}

// Update modifies an existing video.
func (s *VideoService) Update(id uint, input VideoInput) (*db.Video, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item db.Video
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVideoNotFound
			}
			return err
		}
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		return tx.Omit("Region").Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a video and every reference to it.
func (s *VideoService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&db.Video{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVideoNotFound
		}
		return purgeContentRefs(tx, db.ContentTypeVideo, id)
	})
}

// Reorder updates video sort order based on the provided ids sequence.
func (s *VideoService) Reorder(ids []uint) error {
	return reorder(s.db, &db.Video{}, ids, ErrVideoNotFound)
}

func (s *VideoService) apply(tx *gorm.DB, item *db.Video, input VideoInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrVideoTitleMissing
	}
	embed, err := ParseVideoURL(input.SourceURL)
	if err != nil {
		return err
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return err
	}
	regionID, err := optionalRegion(tx, input.RegionID)
	if err != nil {
		return err
	}
	slug, err := resolveSlug(tx, &db.Video{}, input.Slug, title, "video", item.ID)
	if err != nil {
		return err
	}

	thumbnail := strings.TrimSpace(input.ThumbnailURL)
	if thumbnail == "" {
		thumbnail = embed.ThumbnailURL
	}

	item.Title = title
	item.Slug = slug
	item.Description = strings.TrimSpace(input.Description)
	item.SourceURL = embed.Source
	item.Platform = embed.Platform
	item.EmbedURL = embed.EmbedURL
	item.ThumbnailURL = thumbnail
	item.RegionID = regionID
	item.Region = nil
	item.Status = status
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	return nil
}
