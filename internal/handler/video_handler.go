package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type videoRequest struct {
	Title        string `json:"title" binding:"required,max=200"`
	Slug         string `json:"slug" binding:"omitempty,max=200,slug"`
	Description  string `json:"description"`
	SourceURL    string `json:"source_url" binding:"required"`
	ThumbnailURL string `json:"thumbnail_url"`
	RegionID     *uint  `json:"region_id"`
	Status       string `json:"status" binding:"omitempty,oneof=draft published"`
	SortOrder    *int   `json:"sort_order"`
}

func (r videoRequest) input() service.VideoInput {
	return service.VideoInput{
		Title:        r.Title,
		Slug:         r.Slug,
		Description:  r.Description,
		SourceURL:    r.SourceURL,
		ThumbnailURL: r.ThumbnailURL,
		RegionID:     r.RegionID,
		Status:       r.Status,
		SortOrder:    r.SortOrder,
	}
}

// 视频可能出现在文章、区域等页面的关联列表里。
var videoTags = []string{TagVideo, TagRegion, TagContentLink, TagHeroSlide}

// ListVideos 后台视频列表
func (a *API) ListVideos(c *gin.Context) {
	result, err := a.videos.List(service.VideoFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Platform: c.Query("platform"),
		RegionID: queryUint(c, "region_id"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 20),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取视频列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVideo 获取单个视频
func (a *API) GetVideo(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的视频ID")
	if !ok {
		return
	}
	video, err := a.videos.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "获取视频失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

// CreateVideo 创建视频，来源链接无法识别时返回 400
func (a *API) CreateVideo(c *gin.Context) {
	var req videoRequest
	if !bindJSON(c, &req, "视频信息不完整") {
		return
	}
	video, err := a.videos.Create(req.input())
	if err != nil {
		a.respondServiceError(c, err, "创建视频失败")
		return
	}
	a.invalidate(c, videoTags...)
	c.JSON(http.StatusCreated, gin.H{"message": "视频创建成功", "video": video})
}

// UpdateVideo 更新视频
func (a *API) UpdateVideo(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的视频ID")
	if !ok {
		return
	}
	var req videoRequest
	if !bindJSON(c, &req, "视频信息不完整") {
		return
	}
	video, err := a.videos.Update(id, req.input())
	if err != nil {
		a.respondServiceError(c, err, "更新视频失败")
		return
	}
	a.invalidate(c, videoTags...)
	c.JSON(http.StatusOK, gin.H{"message": "视频更新成功", "video": video})
}

// DeleteVideo 删除视频
func (a *API) DeleteVideo(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的视频ID")
	if !ok {
		return
	}
	if err := a.videos.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除视频失败")
		return
	}
	a.invalidateContent(c, TagVideo, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "视频删除成功"})
}

// ReorderVideos 按给定顺序重排视频
func (a *API) ReorderVideos(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.videos.Reorder(req.IDs); err != nil {
		a.respondServiceError(c, err, "视频排序失败")
		return
	}
	a.invalidate(c, TagVideo, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
