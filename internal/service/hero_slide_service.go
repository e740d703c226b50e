package service

import (
	"errors"
	"strings"
	"time"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrHeroSlideNotFound = errors.New("hero slide not found")
	ErrHeroSlideKind     = errors.New("hero slide kind is invalid")
	ErrHeroSlideTitle    = errors.New("custom hero slide needs a title and image")
	ErrHeroSlideWindow   = errors.New("hero slide ends before it starts")
	ErrHeroSlideOrder    = errors.New("reorder must list every hero slide exactly once")
)

// HeroSlideInput represents fields accepted when saving a hero slide.
type HeroSlideInput struct {
	Kind        string
	Title       string
	Subtitle    string
	ImageURL    string
	LinkURL     string
	ButtonLabel string
	ContentType string
	ContentID   uint
	Active      *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// ResolvedSlide 是首页实际渲染的轮播项，content 类型已合并引用内容的字段。
type ResolvedSlide struct {
	ID          uint   `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	ImageURL    string `json:"image_url"`
	LinkURL     string `json:"link_url,omitempty"`
	ButtonLabel string `json:"button_label,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	ContentID   uint   `json:"content_id,omitempty"`
}

// HeroSlideService manages the homepage carousel.
type HeroSlideService struct {
	db       *gorm.DB
	resolver *ContentResolver
}

// NewHeroSlideService creates a HeroSlideService instance.
func NewHeroSlideService(gdb *gorm.DB) *HeroSlideService {
	return &HeroSlideService{db: gdb, resolver: NewContentResolver(gdb)}
}

// List returns every slide in carousel order.
func (s *HeroSlideService) List() ([]db.HeroSlide, error) {
	var items []db.HeroSlide
	if err := s.db.Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a slide by id.
func (s *HeroSlideService) Get(id uint) (*db.HeroSlide, error) {
	var item db.HeroSlide
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHeroSlideNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create appends a slide to the end of the carousel.
func (s *HeroSlideService) Create(input HeroSlideInput) (*db.HeroSlide, error) {
	item := db.HeroSlide{Active: true}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.apply(&item, input); err != nil {
			return err
		}
		order, err := nextSortOrder(tx, &db.HeroSlide{})
		if err != nil {
			return err
		}
		item.SortOrder = order
		active := item.Active
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		// default:true 会吞掉零值 false，需要单独写回
		if !active {
			item.Active = false
			return tx.Model(&item).Update("active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing slide.
func (s *HeroSlideService) Update(id uint, input HeroSlideInput) (*db.HeroSlide, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(item, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a slide.
func (s *HeroSlideService) Delete(id uint) error {
	result := s.db.Delete(&db.HeroSlide{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHeroSlideNotFound
	}
	return nil
}

// Reorder rewrites carousel order. ids must be a permutation of all slides.
func (s *HeroSlideService) Reorder(ids []uint) error {
	var total int64
	if err := s.db.Model(&db.HeroSlide{}).Count(&total).Error; err != nil {
		return err
	}
	if int64(len(ids)) != total || len(uniqueIDs(ids)) != len(ids) {
		return ErrHeroSlideOrder
	}
	if err := reorder(s.db, &db.HeroSlide{}, ids, ErrHeroSlideNotFound); err != nil {
		if errors.Is(err, ErrOrderInvalid) {
			return ErrHeroSlideOrder
		}
		return err
	}
	return nil
}

// ListActive returns slides visible at now, in order. Content slides whose
// target is gone or unpublished are skipped.
func (s *HeroSlideService) ListActive(now time.Time) ([]ResolvedSlide, error) {
	var items []db.HeroSlide
	if err := s.db.Where("active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("sort_order asc").Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	var refs []ContentRef
	for _, it := range items {
		if it.Kind == db.HeroSlideKindContent {
			refs = append(refs, ContentRef{Type: it.ContentType, ID: it.ContentID})
		}
	}
	summaries, err := s.resolver.ResolveMany(refs)
	if err != nil {
		return nil, err
	}

	out := make([]ResolvedSlide, 0, len(items))
	for _, it := range items {
		slide := ResolvedSlide{
			ID:          it.ID,
			Kind:        it.Kind,
			Title:       it.Title,
			Subtitle:    it.Subtitle,
			ImageURL:    it.ImageURL,
			LinkURL:     it.LinkURL,
			ButtonLabel: it.ButtonLabel,
		}
		if it.Kind == db.HeroSlideKindContent {
			summary, ok := summaries[ContentRef{Type: it.ContentType, ID: it.ContentID}]
			if !ok || !summary.Published {
				continue
			}
			slide.ContentType = it.ContentType
			slide.ContentID = it.ContentID
			if slide.Title == "" {
				slide.Title = summary.Title
			}
			if slide.Subtitle == "" {
				slide.Subtitle = summary.Summary
			}
			if slide.ImageURL == "" {
				slide.ImageURL = summary.ImageURL
			}
			if slide.LinkURL == "" {
				slide.LinkURL = summary.URL
			}
		}
		out = append(out, slide)
	}
	return out, nil
}

func (s *HeroSlideService) apply(item *db.HeroSlide, input HeroSlideInput) error {
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if kind == "" {
		kind = db.HeroSlideKindCustom
	}
	title := strings.TrimSpace(input.Title)
	image := strings.TrimSpace(input.ImageURL)

	switch kind {
	case db.HeroSlideKindCustom:
		if title == "" || image == "" {
			return ErrHeroSlideTitle
		}
		item.ContentType = ""
		item.ContentID = 0
	case db.HeroSlideKindContent:
		if !ValidContentType(input.ContentType) {
			return ErrContentType
		}
		if _, err := s.resolver.Resolve(ContentRef{Type: input.ContentType, ID: input.ContentID}); err != nil {
			return err
		}
		item.ContentType = input.ContentType
		item.ContentID = input.ContentID
	default:
		return ErrHeroSlideKind
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.EndsAt.After(*input.StartsAt) {
		return ErrHeroSlideWindow
	}

	item.Kind = kind
	item.Title = title
	item.Subtitle = strings.TrimSpace(input.Subtitle)
	item.ImageURL = image
	item.LinkURL = strings.TrimSpace(input.LinkURL)
	item.ButtonLabel = strings.TrimSpace(input.ButtonLabel)
	item.StartsAt = input.StartsAt
	item.EndsAt = input.EndsAt
	if input.Active != nil {
		item.Active = *input.Active
	}
	return nil
}
