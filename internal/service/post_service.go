package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound        = errors.New("post not found")
	ErrPostTitleMissing    = errors.New("post title is required")
	ErrCoverRequired       = errors.New("cover image is required")
	ErrInvalidPublishState = errors.New("post is missing required fields for publishing")
)

// PostService wraps post related database operations.
type PostService struct {
	db  *gorm.DB
	now func() time.Time
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Search   string
	Status   string
	RegionID uint
	TagNames []string
	Page     int
	PerPage  int
}

// PostListResult aggregates paginated list data and counters.
type PostListResult struct {
	ListResult[db.Post]
	PublishedCount int64 `json:"published_count"`
	DraftCount     int64 `json:"draft_count"`
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title       string
	Slug        string
	Content     string
	Summary     string
	TagIDs      []uint
	RegionID    *uint
	UserID      uint
	CoverURL    string
	CoverWidth  int
	CoverHeight int
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb, now: time.Now}
}

// Get fetches a post by id with tags, region and author preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Preload("User").Preload("Region").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPublishedBySlug fetches a published post for the public site.
func (s *PostService) GetPublishedBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Preload("User").Preload("Region").
		Where("slug = ? AND status = ?", strings.ToLower(strings.TrimSpace(slug)), db.StatusPublished).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create persists a draft post and associates tags in a transaction.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	post := db.Post{Status: db.StatusDraft, UserID: input.UserID}
	if err := s.save(&post, input); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update applies updates to an existing post. Status is changed only via
// Publish/Unpublish; a published post must stay publishable.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	input.UserID = existing.UserID
	if existing.Status == db.StatusPublished {
		if err := checkPublishable(input.Title, input.Content, input.CoverURL, input.CoverWidth, input.CoverHeight); err != nil {
			return nil, err
		}
	}
	if err := s.save(&existing, input); err != nil {
		return nil, err
	}
	return &existing, nil
}

// Delete removes a post together with its tag links and polymorphic references.
func (s *PostService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post db.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := purgeContentRefs(tx, db.ContentTypePost, id); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

// List provides paginated posts with aggregated counters based on filters.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	order := "posts.created_at desc"
	if strings.EqualFold(filter.Status, db.StatusPublished) {
		order = "posts.published_at desc"
	}

	page, err := paginate[db.Post](
		s.applyFilters(s.db.Model(&db.Post{}), filter, true),
		s.applyFilters(s.db.Model(&db.Post{}).Preload("Tags").Preload("User").Preload("Region"), filter, true),
		filter.Page, filter.PerPage, 10, order, "posts.id desc",
	)
	if err != nil {
		return nil, err
	}

	result := &PostListResult{ListResult: page}

	withoutStatus := filter
	withoutStatus.Status = ""
	if err := s.applyFilters(s.db.Model(&db.Post{}), withoutStatus, false).
		Where("posts.status = ?", db.StatusPublished).
		Count(&result.PublishedCount).Error; err != nil {
		return nil, err
	}
	if err := s.applyFilters(s.db.Model(&db.Post{}), withoutStatus, false).
		Where("posts.status = ?", db.StatusDraft).
		Count(&result.DraftCount).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// ListPublished returns published posts for the public site.
func (s *PostService) ListPublished(filter PostFilter) (*PostListResult, error) {
	filter.Status = db.StatusPublished
	return s.List(filter)
}

// Publish marks a post as published after checking it is complete.
// A nil publishedAt keeps an earlier publication time or uses now.
func (s *PostService) Publish(id uint, publishedAt *time.Time) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := checkPublishable(post.Title, post.Content, post.CoverURL, post.CoverWidth, post.CoverHeight); err != nil {
		return nil, err
	}

	publishTime := s.now()
	switch {
	case publishedAt != nil && !publishedAt.IsZero():
		publishTime = *publishedAt
	case post.PublishedAt != nil:
		publishTime = *post.PublishedAt
	}

	if err := s.db.Model(&db.Post{}).Where("id = ?", id).Updates(map[string]any{
		"status":       db.StatusPublished,
		"published_at": publishTime,
		"reading_time": calculateReadingTime(post.Content),
	}).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Unpublish moves a post back to draft; the publication time is kept.
func (s *PostService) Unpublish(id uint) (*db.Post, error) {
	result := s.db.Model(&db.Post{}).Where("id = ?", id).Update("status", db.StatusDraft)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}
	return s.Get(id)
}

// Latest returns the most recently published posts.
func (s *PostService) Latest(limit int) ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("Region").
		Where("status = ?", db.StatusPublished).
		Order("published_at desc").Order("id desc").
		Limit(normalizePerPage(limit, 6)).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// checkPublishable 已发布文章必须有标题、正文和有效封面。
func checkPublishable(title, content, coverURL string, coverWidth, coverHeight int) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return ErrInvalidPublishState
	}
	if strings.TrimSpace(coverURL) == "" {
		return ErrCoverRequired
	}
	if coverWidth <= 0 || coverHeight <= 0 {
		return ErrCoverInvalid
	}
	return nil
}

func (s *PostService) save(post *db.Post, input PostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrPostTitleMissing
	}
	cover, err := normalizeCover(input.CoverURL, input.CoverWidth, input.CoverHeight)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		regionID, err := optionalRegion(tx, input.RegionID)
		if err != nil {
			return err
		}
		slug, err := resolveSlug(tx, &db.Post{}, input.Slug, title, "post", post.ID)
		if err != nil {
			return err
		}

		post.Title = title
		post.Slug = slug
		post.Content = input.Content
		post.Summary = strings.TrimSpace(input.Summary)
		post.Cover = cover
		post.RegionID = regionID
		post.Region = nil
		post.UserID = input.UserID
		post.ReadingTime = calculateReadingTime(input.Content)

		if err := tx.Omit("Tags", "User", "Region").Save(post).Error; err != nil {
			return err
		}

		var tags []db.Tag
		if len(input.TagIDs) > 0 {
			if err := tx.Where("id IN ?", input.TagIDs).Find(&tags).Error; err != nil {
				return err
			}
			if len(tags) != len(uniqueIDs(input.TagIDs)) {
				return ErrTagNotFound
			}
		}

		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}

		return tx.Preload("Tags").Preload("User").Preload("Region").First(post, post.ID).Error
	})
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter, includeStatus bool) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := likePattern(search)
		query = query.Where("(LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(posts.summary) LIKE ?)", like, like, like)
	}

	if includeStatus && filter.Status != "" {
		query = query.Where("posts.status = ?", filter.Status)
	}

	if filter.RegionID != 0 {
		query = query.Where("posts.region_id = ?", filter.RegionID)
	}

	if len(filter.TagNames) > 0 {
		subQuery := s.db.Model(&db.Post{}).
			Select("posts.id").
			Joins("JOIN post_tags ON posts.id = post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.name IN ?", filter.TagNames).
			Distinct()

		query = query.Where("posts.id IN (?)", subQuery)
	}

	return query
}

func calculateReadingTime(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	words := len(strings.Fields(trimmed))
	minutes := words / 200
	if words%200 != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
