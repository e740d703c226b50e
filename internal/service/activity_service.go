package service

import (
	"errors"
	"strings"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrActivityNotFound     = errors.New("activity not found")
	ErrActivityTitleMissing = errors.New("activity title is required")
	ErrDurationInvalid      = errors.New("duration must not be negative")
)

// ActivityService handles activity CRUD.
type ActivityService struct {
	db *gorm.DB
}

// ActivityFilter describes filters for listing activities.
type ActivityFilter struct {
	Search   string
	Status   string
	RegionID uint
	Category string
	Page     int
	PerPage  int
}

// ActivityInput represents fields accepted when creating or updating an activity.
type ActivityInput struct {
	Title           string
	Slug            string
	RegionID        uint
	Category        string
	Summary         string
	Description     string
	DurationMinutes int
	PriceFrom       int64
	Currency        string
	Status          string
	SortOrder       *int
	CoverURL        string
	CoverWidth      int
	CoverHeight     int
}

// NewActivityService creates an ActivityService instance.
func NewActivityService(gdb *gorm.DB) *ActivityService {
	return &ActivityService{db: gdb}
}

// List returns activities matching the filter.
func (s *ActivityService) List(filter ActivityFilter) (ListResult[db.Activity], error) {
	build := func() *gorm.DB {
		query := s.db.Model(&db.Activity{})
		if status := strings.TrimSpace(filter.Status); status != "" {
			query = query.Where("activities.status = ?", status)
		}
		if filter.RegionID != 0 {
			query = query.Where("activities.region_id = ?", filter.RegionID)
		}
		if category := strings.ToLower(strings.TrimSpace(filter.Category)); category != "" {
			query = query.Where("activities.category = ?", category)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := likePattern(search)
			query = query.Where("(LOWER(activities.title) LIKE ? OR LOWER(activities.summary) LIKE ?)", like, like)
		}
		return query
	}
	return paginate[db.Activity](build(), build().Preload("Region"), filter.Page, filter.PerPage, 12,
		"activities.sort_order asc", "activities.title asc")
}

// ListPublished returns published activities.
func (s *ActivityService) ListPublished(filter ActivityFilter) (ListResult[db.Activity], error) {
	filter.Status = db.StatusPublished
	return s.List(filter)
}

// Categories lists distinct categories of published activities.
func (s *ActivityService) Categories() ([]string, error) {
	categories := []string{}
	if err := s.db.Model(&db.Activity{}).
		Where("status = ? AND category <> ''", db.StatusPublished).
		Distinct().
		Order("category asc").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Get fetches an activity by id.
func (s *ActivityService) Get(id uint) (*db.Activity, error) {
	var item db.Activity
	if err := s.db.Preload("Region").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetPublishedBySlug fetches a published activity for the public site.
func (s *ActivityService) GetPublishedBySlug(slug string) (*db.Activity, error) {
	var item db.Activity
	if err := s.db.Preload("Region").
		Where("slug = ? AND status = ?", strings.ToLower(strings.TrimSpace(slug)), db.StatusPublished).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new activity.
func (s *ActivityService) Create(input ActivityInput) (*db.Activity, error) {
	var item db.Activity
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		if input.SortOrder == nil {
			order, err := nextSortOrder(tx, &db.Activity{}, "region_id = ?", input.RegionID)
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

// Update modifies an existing activity.
func (s *ActivityService) Update(id uint, input ActivityInput) (*db.Activity, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item db.Activity
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
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

// Delete removes an activity and every reference to it.
func (s *ActivityService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&db.Activity{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrActivityNotFound
		}
		return purgeContentRefs(tx, db.ContentTypeActivity, id)
	})
}

// Reorder updates activity sort order based on the provided ids sequence.
func (s *ActivityService) Reorder(ids []uint) error {
	return reorder(s.db, &db.Activity{}, ids, ErrActivityNotFound)
}

func (s *ActivityService) apply(tx *gorm.DB, item *db.Activity, input ActivityInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrActivityTitleMissing
	}
	if input.DurationMinutes < 0 {
		return ErrDurationInvalid
	}
	if input.PriceFrom < 0 {
		return ErrPriceInvalid
	}
	currency, err := normalizeCurrency(input.Currency, input.PriceFrom)
	if err != nil {
		return err
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return err
	}
	cover, err := normalizeCover(input.CoverURL, input.CoverWidth, input.CoverHeight)
	if err != nil {
		return err
	}
	if err := requireRegion(tx, input.RegionID); err != nil {
		return err
	}
	slug, err := resolveSlug(tx, &db.Activity{}, input.Slug, title, "activity", item.ID)
	if err != nil {
		return err
	}

	item.Title = title
	item.Slug = slug
	item.RegionID = input.RegionID
	item.Region = nil
	item.Category = strings.ToLower(strings.TrimSpace(input.Category))
	item.Summary = strings.TrimSpace(input.Summary)
	item.Description = strings.TrimSpace(input.Description)
	item.DurationMinutes = input.DurationMinutes
	item.PriceFrom = input.PriceFrom
	item.Currency = currency
	item.Status = status
	item.Cover = cover
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	return nil
}
