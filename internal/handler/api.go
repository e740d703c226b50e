package handler

import (
	"time"

	"github.com/tourcms/internal/auth"
	"github.com/tourcms/internal/cache"
	"github.com/tourcms/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options 汇总构建 API 所需的外部依赖与站点配置。
type Options struct {
	UploadDir            string
	UploadURL            string
	SiteBaseURL          string
	CommentRatePerMinute int
	Cache                cache.Store
	Logger               *zap.Logger
	Tokens               *auth.Manager
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	posts      *service.PostService
	tags       *service.TagService
	regions    *service.RegionService
	hotels     *service.HotelService
	activities *service.ActivityService
	videos     *service.VideoService
	galleries  *service.GalleryService
	comments   *service.CommentService
	heroSlides *service.HeroSlideService
	links      *service.ContentLinkService
	pages      *service.PageService
	system     *service.SystemSettingService
	analytics  analyticsProvider
	auth       *service.AuthService
	sitemap    *service.SitemapService
	cache      cache.Store
	log        *zap.Logger
	uploadDir  string
	uploadURL  string
	siteURL    string
	now        func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	registerValidators()

	store := opts.Cache
	if store == nil {
		store = cache.Nop{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}
	uploadURL := opts.UploadURL
	if uploadURL == "" {
		uploadURL = "/static/uploads"
	}

	return &API{
		db:         gdb,
		posts:      service.NewPostService(gdb),
		tags:       service.NewTagService(gdb),
		regions:    service.NewRegionService(gdb),
		hotels:     service.NewHotelService(gdb),
		activities: service.NewActivityService(gdb),
		videos:     service.NewVideoService(gdb),
		galleries:  service.NewGalleryService(gdb),
		comments:   service.NewCommentService(gdb, opts.CommentRatePerMinute),
		heroSlides: service.NewHeroSlideService(gdb),
		links:      service.NewContentLinkService(gdb),
		pages:      service.NewPageService(gdb),
		system:     service.NewSystemSettingService(gdb),
		analytics:  service.NewAnalyticsService(gdb),
		auth:       service.NewAuthService(gdb, opts.Tokens),
		sitemap:    service.NewSitemapService(gdb),
		cache:      store,
		log:        log,
		uploadDir:  uploadDir,
		uploadURL:  uploadURL,
		siteURL:    opts.SiteBaseURL,
		now:        time.Now,
	}
}

// DB exposes the underlying gorm instance for the CLI.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Auth exposes the auth service so the CLI can purge expired sessions.
func (a *API) Auth() *service.AuthService {
	return a.auth
}
