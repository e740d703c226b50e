package service

import (
	"time"

	"github.com/tourcms/internal/db"
	"gorm.io/gorm"
)

// SitemapEntry 是站点地图中的一个地址，Path 为站内相对路径。
type SitemapEntry struct {
	Path    string
	LastMod time.Time
}

// SitemapService 汇总所有已发布内容的公开地址。
type SitemapService struct {
	db *gorm.DB
}

// NewSitemapService creates a SitemapService instance.
func NewSitemapService(gdb *gorm.DB) *SitemapService {
	return &SitemapService{db: gdb}
}

type sitemapSource struct {
	model  any
	prefix string
}

var sitemapSources = []sitemapSource{
	{model: &db.Region{}, prefix: "/regions/"},
	{model: &db.Post{}, prefix: "/posts/"},
	{model: &db.Hotel{}, prefix: "/hotels/"},
	{model: &db.Activity{}, prefix: "/activities/"},
	{model: &db.Video{}, prefix: "/videos/"},
	{model: &db.Gallery{}, prefix: "/galleries/"},
}

// Entries lists published content followed by static pages.
func (s *SitemapService) Entries() ([]SitemapEntry, error) {
	entries := []SitemapEntry{{Path: "/"}}

	type row struct {
		Slug      string
		UpdatedAt time.Time
	}
	for _, source := range sitemapSources {
		var rows []row
		if err := s.db.Model(source.model).
			Select("slug", "updated_at").
			Where("status = ?", db.StatusPublished).
			Order("updated_at desc").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			entries = append(entries, SitemapEntry{Path: source.prefix + r.Slug, LastMod: r.UpdatedAt})
		}
	}

	var pages []row
	if err := s.db.Model(&db.Page{}).Select("slug", "updated_at").Order("slug asc").Scan(&pages).Error; err != nil {
		return nil, err
	}
	for _, p := range pages {
		entries = append(entries, SitemapEntry{Path: "/pages/" + p.Slug, LastMod: p.UpdatedAt})
	}
	return entries, nil
}
