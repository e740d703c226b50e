package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
)

const (
	visitorCookieName   = "tc_visitor_id"
	visitorCookieMaxAge = 365 * 24 * 60 * 60

	homeFeaturedRegions = 6
	homeLatestItems     = 6
	regionSectionSize   = 50
)

type viewRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	ContentID   uint   `json:"content_id" binding:"required"`
}

func (a *API) ensureVisitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookieName); err == nil && strings.TrimSpace(id) != "" {
		return id
	}

	visitorID := uuid.NewString()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     visitorCookieName,
		Value:    visitorID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request.TLS != nil,
		MaxAge:   visitorCookieMaxAge,
		Expires:  a.now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
	return visitorID
}

// detailExtras 加载详情页共用的关联内容，commentable 为真时附带评论树。
func (a *API) detailExtras(ref service.ContentRef, commentable bool) (gin.H, error) {
	links, err := a.links.List(ref, true)
	if err != nil {
		return nil, err
	}
	extras := gin.H{"links": links}
	if !commentable {
		return extras, nil
	}
	thread, err := a.comments.Thread(ref.Type, ref.ID)
	if err != nil {
		return nil, err
	}
	count, err := a.comments.CountApproved(ref.Type, ref.ID)
	if err != nil {
		return nil, err
	}
	extras["comments"] = thread
	extras["comment_count"] = count
	return extras, nil
}

// ShowHome 首页：生效中的轮播、推荐区域、最新文章与视频
func (a *API) ShowHome(c *gin.Context) {
	slides, err := a.heroSlides.ListActive(a.now())
	if err != nil {
		a.respondServiceError(c, err, "获取首页轮播失败")
		return
	}
	regions, err := a.regions.ListPublished()
	if err != nil {
		a.respondServiceError(c, err, "获取区域失败")
		return
	}
	if len(regions) > homeFeaturedRegions {
		regions = regions[:homeFeaturedRegions]
	}
	posts, err := a.posts.Latest(homeLatestItems)
	if err != nil {
		a.respondServiceError(c, err, "获取文章失败")
		return
	}
	videos, err := a.videos.Latest(homeLatestItems)
	if err != nil {
		a.respondServiceError(c, err, "获取视频失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hero_slides":   slides,
		"regions":       regions,
		"latest_posts":  posts,
		"latest_videos": videos,
	})
}

// ListPublicRegions 所有已发布区域
func (a *API) ListPublicRegions(c *gin.Context) {
	regions, err := a.regions.ListPublished()
	if err != nil {
		a.respondServiceError(c, err, "获取区域失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// ShowRegion 区域详情，附带该区域下已发布的酒店、活动、文章、视频与相册
func (a *API) ShowRegion(c *gin.Context) {
	region, err := a.regions.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "获取区域失败")
		return
	}

	hotels, err := a.hotels.ListPublished(service.HotelFilter{RegionID: region.ID, PerPage: regionSectionSize})
	if err != nil {
		a.respondServiceError(c, err, "获取酒店失败")
		return
	}
	activities, err := a.activities.ListPublished(service.ActivityFilter{RegionID: region.ID, PerPage: regionSectionSize})
	if err != nil {
		a.respondServiceError(c, err, "获取活动失败")
		return
	}
	posts, err := a.posts.ListPublished(service.PostFilter{RegionID: region.ID, PerPage: regionSectionSize})
	if err != nil {
		a.respondServiceError(c, err, "获取文章失败")
		return
	}
	videos, err := a.videos.ListPublished(service.VideoFilter{RegionID: region.ID, PerPage: regionSectionSize})
	if err != nil {
		a.respondServiceError(c, err, "获取视频失败")
		return
	}
	galleries, err := a.galleries.ListPublished(service.GalleryFilter{RegionID: region.ID, PerPage: regionSectionSize})
	if err != nil {
		a.respondServiceError(c, err, "获取相册失败")
		return
	}
	extras, err := a.detailExtras(service.ContentRef{Type: db.ContentTypeRegion, ID: region.ID}, false)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"region":     region,
		"hotels":     hotels.Items,
		"activities": activities.Items,
		"posts":      posts.Items,
		"videos":     videos.Items,
		"galleries":  galleries.Items,
		"links":      extras["links"],
	})
}

// ListPublicPosts 已发布文章列表，支持关键字、区域与标签筛选
func (a *API) ListPublicPosts(c *gin.Context) {
	result, err := a.posts.ListPublished(service.PostFilter{
		Search:   c.Query("search"),
		RegionID: queryUint(c, "region_id"),
		TagNames: c.QueryArray("tags"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 9),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取文章失败")
		return
	}
	tags, err := a.tags.PublishedUsage()
	if err != nil {
		a.respondServiceError(c, err, "获取标签失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
		"has_more":    result.HasMore(),
		"tags":        tags,
	})
}

// ShowPost 文章详情，正文渲染为净化后的 HTML
func (a *API) ShowPost(c *gin.Context) {
	post, err := a.posts.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "获取文章失败")
		return
	}
	rendered, err := renderMarkdown(post.Content)
	if err != nil {
		a.respondServiceError(c, err, "渲染文章失败")
		return
	}
	extras, err := a.detailExtras(service.ContentRef{Type: db.ContentTypePost, ID: post.ID}, true)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}
	extras["post"] = post
	extras["html"] = rendered
	c.JSON(http.StatusOK, extras)
}

// ListPublicHotels 已发布酒店
func (a *API) ListPublicHotels(c *gin.Context) {
	result, err := a.hotels.ListPublished(service.HotelFilter{
		Search:   c.Query("search"),
		RegionID: queryUint(c, "region_id"),
		MinStars: queryInt(c, "min_stars", 0),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 12),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取酒店失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ShowHotel 酒店详情
func (a *API) ShowHotel(c *gin.Context) {
	hotel, err := a.hotels.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "获取酒店失败")
		return
	}
	extras, err := a.detailExtras(service.ContentRef{Type: db.ContentTypeHotel, ID: hotel.ID}, true)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}
	extras["hotel"] = hotel
	c.JSON(http.StatusOK, extras)
}

// ListPublicActivities 已发布活动，附带可选分类
func (a *API) ListPublicActivities(c *gin.Context) {
	result, err := a.activities.ListPublished(service.ActivityFilter{
		Search:   c.Query("search"),
		RegionID: queryUint(c, "region_id"),
		Category: c.Query("category"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 12),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取活动失败")
		return
	}
	categories, err := a.activities.Categories()
	if err != nil {
		a.respondServiceError(c, err, "获取活动分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
		"categories":  categories,
	})
}

// ShowActivity 活动详情
func (a *API) ShowActivity(c *gin.Context) {
	activity, err := a.activities.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "获取活动失败")
		return
	}
	extras, err := a.detailExtras(service.ContentRef{Type: db.ContentTypeActivity, ID: activity.ID}, true)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}
	extras["activity"] = activity
	c.JSON(http.StatusOK, extras)
}

// ListPublicVideos 已发布视频
func (a *API) ListPublicVideos(c *gin.Context) {
	result, err := a.videos.ListPublished(service.VideoFilter{
		Search:   c.Query("search"),
		Platform: c.Query("platform"),
		RegionID: queryUint(c, "region_id"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 12),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取视频失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ShowVideo 视频详情
func (a *API) ShowVideo(c *gin.Context) {
	video, err := a.videos.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "获取视频失败")
		return
	}
	extras, err := a.detailExtras(service.ContentRef{Type: db.ContentTypeVideo, ID: video.ID}, true)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}
	extras["video"] = video
	c.JSON(http.StatusOK, extras)
}

// ListPublicGalleries 已发布相册，封面缺省时取第一张照片
func (a *API) ListPublicGalleries(c *gin.Context) {
	result, err := a.galleries.ListPublished(service.GalleryFilter{
		Search:   c.Query("search"),
		RegionID: queryUint(c, "region_id"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 12),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取相册失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ShowGallery 相册详情，照片按排序返回
func (a *API) ShowGallery(c *gin.Context) {
	gallery, err := a.galleries.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "获取相册失败")
		return
	}
	extras, err := a.detailExtras(service.ContentRef{Type: db.ContentTypeGallery, ID: gallery.ID}, true)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}
	extras["gallery"] = gallery
	c.JSON(http.StatusOK, extras)
}

// ShowPage 静态页面，markdown 渲染为 HTML
func (a *API) ShowPage(c *gin.Context) {
	page, err := a.pages.GetBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "获取页面失败")
		return
	}
	rendered, err := renderMarkdown(page.Content)
	if err != nil {
		a.respondServiceError(c, err, "渲染页面失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "html": rendered})
}

// ShowSettings 公开的站点信息
func (a *API) ShowSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		a.respondServiceError(c, err, "获取站点信息失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// RecordView 记录一次内容浏览。详情接口会被缓存，因此由前端单独上报。
func (a *API) RecordView(c *gin.Context) {
	var req viewRequest
	if !bindJSON(c, &req, "缺少浏览目标") {
		return
	}
	stats, err := a.analytics.RecordView(req.ContentType, req.ContentID, a.ensureVisitorID(c), a.now())
	if err != nil {
		a.respondServiceError(c, err, "记录浏览失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
