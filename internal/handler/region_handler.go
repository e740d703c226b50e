package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type regionRequest struct {
	Name        string  `json:"name" binding:"required,max=160"`
	Slug        string  `json:"slug" binding:"omitempty,max=160,slug"`
	Summary     string  `json:"summary" binding:"max=500"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" binding:"gte=-180,lte=180"`
	Status      string  `json:"status" binding:"omitempty,oneof=draft published"`
	SortOrder   *int    `json:"sort_order"`
	CoverURL    string  `json:"cover_url"`
	CoverWidth  int     `json:"cover_width"`
	CoverHeight int     `json:"cover_height"`
}

func (r regionRequest) input() service.RegionInput {
	return service.RegionInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Summary:     r.Summary,
		Description: r.Description,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Status:      r.Status,
		SortOrder:   r.SortOrder,
		CoverURL:    r.CoverURL,
		CoverWidth:  r.CoverWidth,
		CoverHeight: r.CoverHeight,
	}
}

// 区域被酒店、活动、文章等内嵌展示，修改后这些列表都要刷新。
var regionTags = append([]string{TagContentLink, TagHeroSlide}, ContentTags...)

// ListRegions 后台区域列表
func (a *API) ListRegions(c *gin.Context) {
	result, err := a.regions.List(service.RegionFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 20),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取区域列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRegion 获取单个区域
func (a *API) GetRegion(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的区域ID")
	if !ok {
		return
	}
	region, err := a.regions.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "获取区域失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"region": region})
}

// CreateRegion 创建区域
func (a *API) CreateRegion(c *gin.Context) {
	var req regionRequest
	if !bindJSON(c, &req, "区域信息不完整") {
		return
	}
	region, err := a.regions.Create(req.input())
	if err != nil {
		a.respondServiceError(c, err, "创建区域失败")
		return
	}
	a.invalidate(c, regionTags...)
	c.JSON(http.StatusCreated, gin.H{"message": "区域创建成功", "region": region})
}

// UpdateRegion 更新区域
func (a *API) UpdateRegion(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的区域ID")
	if !ok {
		return
	}
	var req regionRequest
	if !bindJSON(c, &req, "区域信息不完整") {
		return
	}
	region, err := a.regions.Update(id, req.input())
	if err != nil {
		a.respondServiceError(c, err, "更新区域失败")
		return
	}
	a.invalidate(c, regionTags...)
	c.JSON(http.StatusOK, gin.H{"message": "区域更新成功", "region": region})
}

// DeleteRegion 删除区域，仍有关联内容时返回 409
func (a *API) DeleteRegion(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的区域ID")
	if !ok {
		return
	}
	if err := a.regions.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除区域失败")
		return
	}
	a.invalidate(c, regionTags...)
	c.JSON(http.StatusOK, gin.H{"message": "区域删除成功"})
}

// ReorderRegions 按给定顺序重排区域
func (a *API) ReorderRegions(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.regions.Reorder(req.IDs); err != nil {
		a.respondServiceError(c, err, "区域排序失败")
		return
	}
	a.invalidate(c, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
