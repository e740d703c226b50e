package service

import (
	"errors"
	"strings"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrRegionNotFound    = errors.New("region not found")
	ErrRegionNameMissing = errors.New("region name is required")
	ErrRegionInUse       = errors.New("region still has hotels, activities or posts")
)

// RegionService handles region CRUD.
type RegionService struct {
	db *gorm.DB
}

// RegionFilter describes filters for listing regions.
type RegionFilter struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// RegionInput represents fields accepted when creating or updating a region.
type RegionInput struct {
	Name        string
	Slug        string
	Summary     string
	Description string
	Latitude    float64
	Longitude   float64
	Status      string
	SortOrder   *int
	CoverURL    string
	CoverWidth  int
	CoverHeight int
}

// NewRegionService creates a RegionService instance.
func NewRegionService(gdb *gorm.DB) *RegionService {
	return &RegionService{db: gdb}
}

// List returns regions matching the filter ordered by sort order.
func (s *RegionService) List(filter RegionFilter) (ListResult[db.Region], error) {
	build := func() *gorm.DB {
		query := s.db.Model(&db.Region{})
		if status := strings.TrimSpace(filter.Status); status != "" {
			query = query.Where("status = ?", status)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := likePattern(search)
			query = query.Where("LOWER(name) LIKE ? OR LOWER(summary) LIKE ?", like, like)
		}
		return query
	}
	return paginate[db.Region](build(), build(), filter.Page, filter.PerPage, 20, "sort_order asc", "name asc")
}

// ListPublished returns every published region in display order.
func (s *RegionService) ListPublished() ([]db.Region, error) {
	var items []db.Region
	if err := s.db.Where("status = ?", db.StatusPublished).
		Order("sort_order asc").Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a region by id.
func (s *RegionService) Get(id uint) (*db.Region, error) {
	var item db.Region
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetPublishedBySlug fetches a published region for the public site.
func (s *RegionService) GetPublishedBySlug(slug string) (*db.Region, error) {
	var item db.Region
	if err := s.db.Where("slug = ? AND status = ?", strings.ToLower(strings.TrimSpace(slug)), db.StatusPublished).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new region.
func (s *RegionService) Create(input RegionInput) (*db.Region, error) {
	var item db.Region
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		if input.SortOrder == nil {
			order, err := nextSortOrder(tx, &db.Region{})
			if err != nil {
				return err
			}
			item.SortOrder = order
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing region.
func (s *RegionService) Update(id uint, input RegionInput) (*db.Region, error) {
	var item db.Region
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegionNotFound
			}
			return err
		}
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes a region that no hotel, activity or post points at.
// Videos and galleries are detached instead.
func (s *RegionService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item db.Region
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegionNotFound
			}
			return err
		}

		for _, model := range []any{&db.Hotel{}, &db.Activity{}, &db.Post{}} {
			var count int64
			if err := tx.Model(model).Where("region_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrRegionInUse
			}
		}

		for _, model := range []any{&db.Video{}, &db.Gallery{}} {
			if err := tx.Model(model).Where("region_id = ?", id).Update("region_id", nil).Error; err != nil {
				return err
			}
		}
		if err := purgeContentRefs(tx, db.ContentTypeRegion, id); err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

// Reorder updates region sort order based on the provided ids sequence.
func (s *RegionService) Reorder(ids []uint) error {
	return reorder(s.db, &db.Region{}, ids, ErrRegionNotFound)
}

func (s *RegionService) apply(tx *gorm.DB, item *db.Region, input RegionInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrRegionNameMissing
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return err
	}
	cover, err := normalizeCover(input.CoverURL, input.CoverWidth, input.CoverHeight)
	if err != nil {
		return err
	}
	slug, err := resolveSlug(tx, &db.Region{}, input.Slug, name, "region", item.ID)
	if err != nil {
		return err
	}

	item.Name = name
	item.Slug = slug
	item.Summary = strings.TrimSpace(input.Summary)
	item.Description = strings.TrimSpace(input.Description)
	item.Latitude = input.Latitude
	item.Longitude = input.Longitude
	item.Status = status
	item.Cover = cover
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	return nil
}

// requireRegion 校验区域存在，供酒店、活动等内容引用。
func requireRegion(tx *gorm.DB, id uint) error {
	if id == 0 {
		return ErrRegionNotFound
	}
	var count int64
	if err := tx.Model(&db.Region{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRegionNotFound
	}
	return nil
}

func optionalRegion(tx *gorm.DB, id *uint) (*uint, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	if err := requireRegion(tx, *id); err != nil {
		return nil, err
	}
	value := *id
	return &value, nil
}
