package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/cache"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/handler"
	"github.com/tourcms/internal/logger"
	"go.uber.org/zap"
)

// Config 路由层需要的配置
type Config struct {
	SessionSecret  string
	UploadDir      string
	UploadURL      string
	CacheTTL       time.Duration
	SecureCookie   bool
	// TrustedProxies 为空时不信任任何 X-Forwarded-For，ClientIP 取连接地址
	TrustedProxies []string
}

// detailTags 详情页除自身外还会展示关联内容与评论
func detailTags(own ...string) []string {
	return append(own,
		handler.TagRegion,
		handler.TagContentLink,
		handler.TagComment,
		handler.TagPost,
		handler.TagVideo,
		handler.TagGallery,
	)
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, store cache.Store, log *zap.Logger, cfg Config) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = cache.Nop{}
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = "/static/uploads"
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", cfg.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(logger.Middleware(log), logger.Recovery(log))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{cfg.UploadURL})))

	// 配置会话中间件
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("tourcms_session", sessionStore))

	// 静态文件服务
	if cfg.UploadDir != "" {
		r.Static(cfg.UploadURL, cfg.UploadDir)
		r.Static("/uploads", cfg.UploadDir)
	}

	cached := func(tags ...string) gin.HandlerFunc {
		return cache.Middleware(store, cfg.CacheTTL, log, tags...)
	}

	r.GET("/healthz", api.HealthCheck)
	r.GET("/sitemap.xml", cached(append(handler.ContentTags, handler.TagPage)...), api.Sitemap)

	// 公开接口，GET 请求全部经过标签缓存
	public := r.Group("/api")
	{
		public.GET("/home", cached(append(handler.ContentTags, handler.TagHeroSlide)...), api.ShowHome)
		public.GET("/regions", cached(handler.TagRegion), api.ListPublicRegions)
		public.GET("/regions/:slug", cached(append(handler.ContentTags, handler.TagContentLink)...), api.ShowRegion)
		public.GET("/posts", cached(handler.TagPost, handler.TagTag, handler.TagRegion), api.ListPublicPosts)
		public.GET("/posts/:slug", cached(detailTags(handler.TagTag)...), api.ShowPost)
		public.GET("/hotels", cached(handler.TagHotel, handler.TagRegion), api.ListPublicHotels)
		public.GET("/hotels/:slug", cached(detailTags(handler.TagHotel)...), api.ShowHotel)
		public.GET("/activities", cached(handler.TagActivity, handler.TagRegion), api.ListPublicActivities)
		public.GET("/activities/:slug", cached(detailTags(handler.TagActivity)...), api.ShowActivity)
		public.GET("/videos", cached(handler.TagVideo, handler.TagRegion), api.ListPublicVideos)
		public.GET("/videos/:slug", cached(detailTags()...), api.ShowVideo)
		public.GET("/galleries", cached(handler.TagGallery, handler.TagRegion), api.ListPublicGalleries)
		public.GET("/galleries/:slug", cached(detailTags()...), api.ShowGallery)
		public.GET("/pages/:slug", cached(handler.TagPage), api.ShowPage)
		public.GET("/settings", cached(handler.TagSettings), api.ShowSettings)
		public.GET("/comments", cached(handler.TagComment), api.ListCommentThread)
		public.POST("/comments", api.CreateComment)
		public.POST("/views", api.RecordView)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)
		admin.POST("/api/token", api.IssueToken)

		// 需要认证的后台接口
		secured := admin.Group("/api")
		secured.Use(api.AuthRequired())
		{
			secured.GET("/me", api.Me)
			secured.DELETE("/token", api.RevokeToken)
			secured.GET("/dashboard", api.GetDashboard)
			secured.POST("/uploads", api.UploadImage)

			secured.GET("/regions", api.ListRegions)
			secured.GET("/regions/:id", api.GetRegion)
			secured.POST("/regions", api.CreateRegion)
			secured.PUT("/regions/order", api.ReorderRegions)
			secured.PUT("/regions/:id", api.UpdateRegion)
			secured.DELETE("/regions/:id", api.DeleteRegion)

			secured.GET("/posts", api.ListPosts)
			secured.GET("/posts/:id", api.GetPost)
			secured.POST("/posts", api.CreatePost)
			secured.POST("/posts/preview", api.PreviewPost)
			secured.PUT("/posts/:id", api.UpdatePost)
			secured.DELETE("/posts/:id", api.DeletePost)
			secured.POST("/posts/:id/publish", api.PublishPost)
			secured.POST("/posts/:id/unpublish", api.UnpublishPost)

			secured.GET("/tags", api.GetTags)
			secured.POST("/tags", api.CreateTag)
			secured.PUT("/tags/order", api.ReorderTags)
			secured.PUT("/tags/:id", api.UpdateTag)
			secured.DELETE("/tags/:id", api.DeleteTag)

			secured.GET("/hotels", api.ListHotels)
			secured.GET("/hotels/:id", api.GetHotel)
			secured.POST("/hotels", api.CreateHotel)
			secured.PUT("/hotels/order", api.ReorderHotels)
			secured.PUT("/hotels/:id", api.UpdateHotel)
			secured.DELETE("/hotels/:id", api.DeleteHotel)

			secured.GET("/activities", api.ListActivities)
			secured.GET("/activities/:id", api.GetActivity)
			secured.POST("/activities", api.CreateActivity)
			secured.PUT("/activities/order", api.ReorderActivities)
			secured.PUT("/activities/:id", api.UpdateActivity)
			secured.DELETE("/activities/:id", api.DeleteActivity)

			secured.GET("/videos", api.ListVideos)
			secured.GET("/videos/:id", api.GetVideo)
			secured.POST("/videos", api.CreateVideo)
			secured.PUT("/videos/order", api.ReorderVideos)
			secured.PUT("/videos/:id", api.UpdateVideo)
			secured.DELETE("/videos/:id", api.DeleteVideo)

			secured.GET("/galleries", api.ListGalleries)
			secured.GET("/galleries/:id", api.GetGallery)
			secured.POST("/galleries", api.CreateGallery)
			secured.PUT("/galleries/order", api.ReorderGalleries)
			secured.PUT("/galleries/:id", api.UpdateGallery)
			secured.DELETE("/galleries/:id", api.DeleteGallery)
			secured.POST("/galleries/:id/photos", api.AddPhoto)
			secured.PUT("/galleries/:id/photos/order", api.ReorderPhotos)
			secured.PUT("/galleries/:id/photos/:photoID", api.UpdatePhoto)
			secured.DELETE("/galleries/:id/photos/:photoID", api.DeletePhoto)

			secured.GET("/comments", api.ListComments)
			secured.PUT("/comments/:id/status", api.ModerateComment)
			secured.DELETE("/comments/:id", api.DeleteComment)

			secured.GET("/hero-slides", api.ListHeroSlides)
			secured.GET("/hero-slides/:id", api.GetHeroSlide)
			secured.POST("/hero-slides", api.CreateHeroSlide)
			secured.PUT("/hero-slides/order", api.ReorderHeroSlides)
			secured.PUT("/hero-slides/:id", api.UpdateHeroSlide)
			secured.DELETE("/hero-slides/:id", api.DeleteHeroSlide)

			secured.GET("/links", api.ListContentLinks)
			secured.POST("/links", api.CreateContentLink)
			secured.PUT("/links", api.ReplaceContentLinks)
			secured.DELETE("/links", api.DeleteContentLink)

			secured.GET("/pages", api.ListPages)
			secured.GET("/pages/:slug", api.GetPage)
			secured.PUT("/pages/:slug", api.SavePage)
			secured.DELETE("/pages/:slug", api.DeletePage)

			secured.GET("/settings", api.GetSystemSettings)
			secured.PUT("/settings", api.UpdateSystemSettings)

			users := secured.Group("/users", api.RoleRequired(db.RoleAdmin))
			users.GET("", api.ListUsers)
			users.POST("", api.CreateUser)
			users.PUT("/:id", api.UpdateUser)
			users.DELETE("/:id", api.DeleteUser)
		}
	}

	return r
}
