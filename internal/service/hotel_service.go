package service

import (
	"errors"
	"strings"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrHotelNotFound    = errors.New("hotel not found")
	ErrHotelNameMissing = errors.New("hotel name is required")
	ErrHotelStars       = errors.New("hotel stars must be between 0 and 5")
	ErrPriceInvalid     = errors.New("price must not be negative")
	ErrCurrencyInvalid  = errors.New("currency must be a 3-letter code")
)

// HotelService handles hotel CRUD.
type HotelService struct {
	db *gorm.DB
}

// HotelFilter describes filters for listing hotels.
type HotelFilter struct {
	Search   string
	Status   string
	RegionID uint
	MinStars int
	Page     int
	PerPage  int
}

// HotelInput represents fields accepted when creating or updating a hotel.
type HotelInput struct {
	Name        string
	Slug        string
	RegionID    uint
	Summary     string
	Description string
	Address     string
	Stars       int
	PriceFrom   int64
	Currency    string
	Phone       string
	Website     string
	BookingURL  string
	Latitude    float64
	Longitude   float64
	Amenities   []string
	Status      string
	SortOrder   *int
	CoverURL    string
	CoverWidth  int
	CoverHeight int
}

// NewHotelService creates a HotelService instance.
func NewHotelService(gdb *gorm.DB) *HotelService {
	return &HotelService{db: gdb}
}

// List returns hotels matching the filter.
func (s *HotelService) List(filter HotelFilter) (ListResult[db.Hotel], error) {
	build := func() *gorm.DB {
		query := s.db.Model(&db.Hotel{})
		if status := strings.TrimSpace(filter.Status); status != "" {
			query = query.Where("hotels.status = ?", status)
		}
		if filter.RegionID != 0 {
			query = query.Where("hotels.region_id = ?", filter.RegionID)
		}
		if filter.MinStars > 0 {
			query = query.Where("hotels.stars >= ?", filter.MinStars)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := likePattern(search)
			query = query.Where("(LOWER(hotels.name) LIKE ? OR LOWER(hotels.summary) LIKE ? OR LOWER(hotels.address) LIKE ?)", like, like, like)
		}
		return query
	}
	return paginate[db.Hotel](build(), build().Preload("Region"), filter.Page, filter.PerPage, 12,
		"hotels.sort_order asc", "hotels.name asc")
}

// ListPublished returns published hotels, optionally limited to a region.
func (s *HotelService) ListPublished(filter HotelFilter) (ListResult[db.Hotel], error) {
	filter.Status = db.StatusPublished
	return s.List(filter)
}

// Get fetches a hotel by id.
func (s *HotelService) Get(id uint) (*db.Hotel, error) {
	var item db.Hotel
	if err := s.db.Preload("Region").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetPublishedBySlug fetches a published hotel for the public site.
func (s *HotelService) GetPublishedBySlug(slug string) (*db.Hotel, error) {
	var item db.Hotel
	if err := s.db.Preload("Region").
		Where("slug = ? AND status = ?", strings.ToLower(strings.TrimSpace(slug)), db.StatusPublished).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new hotel.
func (s *HotelService) Create(input HotelInput) (*db.Hotel, error) {
	var item db.Hotel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.apply(tx, &item, input); err != nil {
			return err
		}
		if input.SortOrder == nil {
			order, err := nextSortOrder(tx, &db.Hotel{}, "region_id = ?", input.RegionID)
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

// Update modifies an existing hotel.
func (s *HotelService) Update(id uint, input HotelInput) (*db.Hotel, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item db.Hotel
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHotelNotFound
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

// Delete removes a hotel and every reference to it.
func (s *HotelService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&db.Hotel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrHotelNotFound
		}
		return purgeContentRefs(tx, db.ContentTypeHotel, id)
	})
}

// Reorder updates hotel sort order based on the provided ids sequence.
func (s *HotelService) Reorder(ids []uint) error {
	return reorder(s.db, &db.Hotel{}, ids, ErrHotelNotFound)
}

func (s *HotelService) apply(tx *gorm.DB, item *db.Hotel, input HotelInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrHotelNameMissing
	}
	if input.Stars < 0 || input.Stars > 5 {
		return ErrHotelStars
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
	slug, err := resolveSlug(tx, &db.Hotel{}, input.Slug, name, "hotel", item.ID)
	if err != nil {
		return err
	}

	item.Name = name
	item.Slug = slug
	item.RegionID = input.RegionID
	item.Region = nil
	item.Summary = strings.TrimSpace(input.Summary)
	item.Description = strings.TrimSpace(input.Description)
	item.Address = strings.TrimSpace(input.Address)
	item.Stars = input.Stars
	item.PriceFrom = input.PriceFrom
	item.Currency = currency
	item.Phone = strings.TrimSpace(input.Phone)
	item.Website = strings.TrimSpace(input.Website)
	item.BookingURL = strings.TrimSpace(input.BookingURL)
	item.Latitude = input.Latitude
	item.Longitude = input.Longitude
	item.Amenities = normalizeAmenities(input.Amenities)
	item.Status = status
	item.Cover = cover
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	return nil
}

func normalizeCurrency(currency string, price int64) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		if price > 0 {
			return "", ErrCurrencyInvalid
		}
		return "", nil
	}
	if len(currency) != 3 {
		return "", ErrCurrencyInvalid
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", ErrCurrencyInvalid
		}
	}
	return currency, nil
}

func normalizeAmenities(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
