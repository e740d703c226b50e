package service

import (
	"errors"
	"strings"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrGalleryNotFound     = errors.New("gallery not found")
	ErrGalleryTitleMissing = errors.New("gallery title is required")
	ErrPhotoNotFound       = errors.New("photo not found")
	ErrPhotoImageMissing   = errors.New("photo image is required")
)

// GalleryService handles photo galleries and the photos inside them.
type GalleryService struct {
	db *gorm.DB
}

// GalleryFilter describes filters for listing galleries.
type GalleryFilter struct {
	Search   string
	Status   string
	RegionID uint
	Page     int
	PerPage  int
}

// GalleryInput represents fields accepted when creating or updating a gallery.
type GalleryInput struct {
	Title       string
	Slug        string
	Description string
	RegionID    *uint
	Status      string
	SortOrder   *int
	CoverURL    string
	CoverWidth  int
	CoverHeight int
}

// PhotoInput represents fields accepted when adding or updating a photo.
type PhotoInput struct {
	ImageURL    string
	ImageWidth  int
	ImageHeight int
	Caption     string
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB) *GalleryService {
	return &GalleryService{db: gdb}
}

// List returns galleries matching the filter. Galleries without an explicit
// cover borrow their first photo.
func (s *GalleryService) List(filter GalleryFilter) (ListResult[db.Gallery], error) {
	build := func() *gorm.DB {
		query := s.db.Model(&db.Gallery{})
		if status := strings.TrimSpace(filter.Status); status != "" {
			query = query.Where("galleries.status = ?", status)
		}
		if filter.RegionID != 0 {
			query = query.Where("galleries.region_id = ?", filter.RegionID)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := likePattern(search)
			query = query.Where("(LOWER(galleries.title) LIKE ? OR LOWER(galleries.description) LIKE ?)", like, like)
		}
		return query
	}
	result, err := paginate[db.Gallery](build(), build().Preload("Region"), filter.Page, filter.PerPage, 12,
		"galleries.sort_order asc", "galleries.created_at desc")
	if err != nil {
		return result, err
	}
	if err := s.fillCovers(result.Items); err != nil {
		return result, err
	}
	return result, nil
}

// ListPublished returns published galleries.
func (s *GalleryService) ListPublished(filter GalleryFilter) (ListResult[db.Gallery], error) {
	filter.Status = db.StatusPublished
	return s.List(filter)
}

// Get fetches a gallery by id with its ordered photos.
func (s *GalleryService) Get(id uint) (*db.Gallery, error) {
	return s.first(s.db.Where("id = ?", id))
}

// GetPublishedBySlug fetches a published gallery with its ordered photos.
func (s *GalleryService) GetPublishedBySlug(slug string) (*db.Gallery, error) {
	return s.first(s.db.Where("slug = ? AND status = ?", strings.ToLower(strings.TrimSpace(slug)), db.StatusPublished))
}

func (s *GalleryService) first(query *gorm.DB) (*db.Gallery, error) {
	var item db.Gallery
	err := query.Preload("Region").
		Preload("Photos", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order asc").Order("id asc")
		}).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	if item.CoverURL == "" && len(item.Photos) > 0 {
		item.Cover = photoCover(item.Photos[0])
	}
	return &item, nil
}

// Create inserts a new gallery.
func (s *GalleryService) Create(input GalleryInput) (*db.Gallery, error) {
	var item db.Gallery
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		if input.SortOrder == nil {
			order, err := nextSortOrder(tx, &db.Gallery{})
			if err != nil {
				return err
			}
			item.SortOrder = order
		}
		return tx.Omit("Region", "Photos").Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(item.ID)
}

// Update modifies an existing gallery. Photos are managed separately.
func (s *GalleryService) Update(id uint, input GalleryInput) (*db.Gallery, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item db.Gallery
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGalleryNotFound
			}
			return err
		}
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		return tx.Omit("Region", "Photos").Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a gallery, its photos and every reference to either.
func (s *GalleryService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var photoIDs []uint
		if err := tx.Model(&db.Photo{}).Where("gallery_id = ?", id).Pluck("id", &photoIDs).Error; err != nil {
			return err
		}
		result := tx.Delete(&db.Gallery{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrGalleryNotFound
		}
		if err := tx.Where("gallery_id = ?", id).Delete(&db.Photo{}).Error; err != nil {
			return err
		}
		if err := purgeContentRefs(tx, db.ContentTypePhoto, photoIDs...); err != nil {
			return err
		}
		return purgeContentRefs(tx, db.ContentTypeGallery, id)
	})
}

// Reorder updates gallery sort order based on the provided ids sequence.
func (s *GalleryService) Reorder(ids []uint) error {
	return reorder(s.db, &db.Gallery{}, ids, ErrGalleryNotFound)
}

// AddPhoto appends a photo to the end of a gallery.
func (s *GalleryService) AddPhoto(galleryID uint, input PhotoInput) (*db.Photo, error) {
	photo := db.Photo{GalleryID: galleryID}
	if err := applyPhoto(&photo, input); err != nil {
		return nil, err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireGallery(tx, galleryID); err != nil {
			return err
		}
		order, err := nextSortOrder(tx, &db.Photo{}, "gallery_id = ?", galleryID)
		if err != nil {
			return err
		}
		photo.SortOrder = order
		return tx.Create(&photo).Error
	})
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// UpdatePhoto changes the image or caption of a photo.
func (s *GalleryService) UpdatePhoto(galleryID, photoID uint, input PhotoInput) (*db.Photo, error) {
	photo, err := s.photo(galleryID, photoID)
	if err != nil {
		return nil, err
	}
	if err := applyPhoto(photo, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

// DeletePhoto removes a photo and the links that point to it.
func (s *GalleryService) DeletePhoto(galleryID, photoID uint) error {
	if _, err := s.photo(galleryID, photoID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&db.Photo{}, photoID).Error; err != nil {
			return err
		}
		return purgeContentRefs(tx, db.ContentTypePhoto, photoID)
	})
}

// ReorderPhotos rewrites photo order inside one gallery. Every id must belong
// to the gallery.
func (s *GalleryService) ReorderPhotos(galleryID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := s.db.Model(&db.Photo{}).
		Where("gallery_id = ? AND id IN ?", galleryID, ids).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(uniqueIDs(ids))) {
		return ErrPhotoNotFound
	}
	return reorder(s.db, &db.Photo{}, ids, ErrPhotoNotFound)
}

func (s *GalleryService) photo(galleryID, photoID uint) (*db.Photo, error) {
	var photo db.Photo
	if err := s.db.Where("id = ? AND gallery_id = ?", photoID, galleryID).First(&photo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}

func (s *GalleryService) fillCovers(items []db.Gallery) error {
	var missing []uint
	for _, it := range items {
		if it.CoverURL == "" {
			missing = append(missing, it.ID)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var photos []db.Photo
	if err := s.db.Where("gallery_id IN ?", missing).
		Order("gallery_id asc").Order("sort_order asc").Order("id asc").
		Find(&photos).Error; err != nil {
		return err
	}
	firsts := make(map[uint]db.Photo, len(missing))
	for _, p := range photos {
		if _, ok := firsts[p.GalleryID]; !ok {
			firsts[p.GalleryID] = p
		}
	}
	for i := range items {
		if p, ok := firsts[items[i].ID]; ok && items[i].CoverURL == "" {
			items[i].Cover = photoCover(p)
		}
	}
	return nil
}

func (s *GalleryService) apply(tx *gorm.DB, item *db.Gallery, input GalleryInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrGalleryTitleMissing
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return err
	}
	cover, err := normalizeCover(input.CoverURL, input.CoverWidth, input.CoverHeight)
	if err != nil {
		return err
	}
	regionID, err := optionalRegion(tx, input.RegionID)
	if err != nil {
		return err
	}
	slug, err := resolveSlug(tx, &db.Gallery{}, input.Slug, title, "gallery", item.ID)
	if err != nil {
		return err
	}

	item.Title = title
	item.Slug = slug
	item.Description = strings.TrimSpace(input.Description)
	item.RegionID = regionID
	item.Region = nil
	item.Status = status
	item.Cover = cover
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	return nil
}

func applyPhoto(photo *db.Photo, input PhotoInput) error {
	url := strings.TrimSpace(input.ImageURL)
	if url == "" || input.ImageWidth <= 0 || input.ImageHeight <= 0 {
		return ErrPhotoImageMissing
	}
	photo.ImageURL = url
	photo.ImageWidth = input.ImageWidth
	photo.ImageHeight = input.ImageHeight
	photo.Caption = strings.TrimSpace(input.Caption)
	return nil
}

func photoCover(p db.Photo) db.Cover {
	return db.Cover{CoverURL: p.ImageURL, CoverWidth: p.ImageWidth, CoverHeight: p.ImageHeight}
}

func requireGallery(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&db.Gallery{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrGalleryNotFound
	}
	return nil
}
