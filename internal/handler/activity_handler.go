package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type activityRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	Slug            string `json:"slug" binding:"omitempty,max=200,slug"`
	RegionID        uint   `json:"region_id" binding:"required"`
	Category        string `json:"category" binding:"max=60"`
	Summary         string `json:"summary" binding:"max=500"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"gte=0"`
	PriceFrom       int64  `json:"price_from" binding:"gte=0"`
	Currency        string `json:"currency"`
	Status          string `json:"status" binding:"omitempty,oneof=draft published"`
	SortOrder       *int   `json:"sort_order"`
	CoverURL        string `json:"cover_url"`
	CoverWidth      int    `json:"cover_width"`
	CoverHeight     int    `json:"cover_height"`
}

func (r activityRequest) input() service.ActivityInput {
	return service.ActivityInput{
		Title:           r.Title,
		Slug:            r.Slug,
		RegionID:        r.RegionID,
		Category:        r.Category,
		Summary:         r.Summary,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		PriceFrom:       r.PriceFrom,
		Currency:        r.Currency,
		Status:          r.Status,
		SortOrder:       r.SortOrder,
		CoverURL:        r.CoverURL,
		CoverWidth:      r.CoverWidth,
		CoverHeight:     r.CoverHeight,
	}
}

// ListActivities 后台活动列表
func (a *API) ListActivities(c *gin.Context) {
	result, err := a.activities.List(service.ActivityFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		RegionID: queryUint(c, "region_id"),
		Category: c.Query("category"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 20),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取活动列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetActivity 获取单个活动
func (a *API) GetActivity(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的活动ID")
	if !ok {
		return
	}
	activity, err := a.activities.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "获取活动失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": activity})
}

// CreateActivity 创建活动
func (a *API) CreateActivity(c *gin.Context) {
	var req activityRequest
	if !bindJSON(c, &req, "活动信息不完整") {
		return
	}
	activity, err := a.activities.Create(req.input())
	if err != nil {
		a.respondServiceError(c, err, "创建活动失败")
		return
	}
	a.invalidate(c, TagActivity, TagRegion)
	c.JSON(http.StatusCreated, gin.H{"message": "活动创建成功", "activity": activity})
}

// UpdateActivity 更新活动
func (a *API) UpdateActivity(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的活动ID")
	if !ok {
		return
	}
	var req activityRequest
	if !bindJSON(c, &req, "活动信息不完整") {
		return
	}
	activity, err := a.activities.Update(id, req.input())
	if err != nil {
		a.respondServiceError(c, err, "更新活动失败")
		return
	}
	a.invalidate(c, TagActivity, TagRegion, TagHeroSlide)
	c.JSON(http.StatusOK, gin.H{"message": "活动更新成功", "activity": activity})
}

// DeleteActivity 删除活动
func (a *API) DeleteActivity(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的活动ID")
	if !ok {
		return
	}
	if err := a.activities.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除活动失败")
		return
	}
	a.invalidateContent(c, TagActivity, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "活动删除成功"})
}

// ReorderActivities 按给定顺序重排活动
func (a *API) ReorderActivities(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.activities.Reorder(req.IDs); err != nil {
		a.respondServiceError(c, err, "活动排序失败")
		return
	}
	a.invalidate(c, TagActivity, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
