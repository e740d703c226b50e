package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound       = errors.New("page not found")
	ErrPageTitleMissing   = errors.New("page title is required")
	ErrPageContentMissing = errors.New("page content is required")
)

// PageInput represents fields accepted when saving a page.
type PageInput struct {
	Title   string
	Summary string
	Content string
}

// PageService provides access to static pages such as About or Contacts.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// List returns every page ordered by slug.
func (s *PageService) List() ([]db.Page, error) {
	var pages []db.Page
	if err := s.db.Order("slug asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// GetBySlug fetches a page for a given slug.
func (s *PageService) GetBySlug(slug string) (*db.Page, error) {
	var page db.Page
	if err := s.db.Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// SaveBySlug creates or updates the page stored under slug. An empty summary
// is derived from the markdown content.
func (s *PageService) SaveBySlug(slug string, input PageInput) (*db.Page, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !SlugPattern.MatchString(slug) {
		return nil, ErrSlugInvalid
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrPageTitleMissing
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrPageContentMissing
	}
	summary := strings.TrimSpace(input.Summary)
	if summary == "" {
		summary = summarizeContent(content)
	}

	var page db.Page
	err := s.db.Where("slug = ?", slug).First(&page).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		page = db.Page{Slug: slug}
	}

	page.Title = title
	page.Summary = summary
	page.Content = content
	if err := s.db.Save(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// Delete removes the page stored under slug.
func (s *PageService) Delete(slug string) error {
	result := s.db.Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).Delete(&db.Page{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

func summarizeContent(markdown string) string {
	replacer := strings.NewReplacer(
		"#", " ",
		"*", " ",
		"`", " ",
		"_", " ",
		">", " ",
		"[", " ",
		"]", " ",
		"(", " ",
		")", " ",
	)
	plain := strings.Join(strings.Fields(replacer.Replace(markdown)), " ")
	if plain == "" {
		return ""
	}

	const limit = 120
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}
	runes := []rune(plain)
	return string(runes[:limit]) + "…"
}
