package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type heroSlideRequest struct {
	Kind        string     `json:"kind" binding:"required,oneof=custom content"`
	Title       string     `json:"title" binding:"max=200"`
	Subtitle    string     `json:"subtitle" binding:"max=300"`
	ImageURL    string     `json:"image_url" binding:"max=500"`
	LinkURL     string     `json:"link_url" binding:"max=500"`
	ButtonLabel string     `json:"button_label" binding:"max=60"`
	ContentType string     `json:"content_type"`
	ContentID   uint       `json:"content_id"`
	Active      *bool      `json:"active"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

func (r heroSlideRequest) input() service.HeroSlideInput {
	return service.HeroSlideInput{
		Kind:        r.Kind,
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		ImageURL:    r.ImageURL,
		LinkURL:     r.LinkURL,
		ButtonLabel: r.ButtonLabel,
		ContentType: r.ContentType,
		ContentID:   r.ContentID,
		Active:      r.Active,
		StartsAt:    r.StartsAt,
		EndsAt:      r.EndsAt,
	}
}

// ListHeroSlides 后台轮播列表，按排序返回全部轮播
func (a *API) ListHeroSlides(c *gin.Context) {
	slides, err := a.heroSlides.List()
	if err != nil {
		a.respondServiceError(c, err, "获取轮播列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slides": slides})
}

// GetHeroSlide 获取单个轮播
func (a *API) GetHeroSlide(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的轮播ID")
	if !ok {
		return
	}
	slide, err := a.heroSlides.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "获取轮播失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"slide": slide})
}

// CreateHeroSlide 新建轮播，追加到末尾
func (a *API) CreateHeroSlide(c *gin.Context) {
	var req heroSlideRequest
	if !bindJSON(c, &req, "轮播信息不完整") {
		return
	}
	slide, err := a.heroSlides.Create(req.input())
	if err != nil {
		a.respondServiceError(c, err, "创建轮播失败")
		return
	}
	a.invalidate(c, TagHeroSlide)
	c.JSON(http.StatusCreated, gin.H{"message": "轮播创建成功", "slide": slide})
}

// UpdateHeroSlide 更新轮播
func (a *API) UpdateHeroSlide(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的轮播ID")
	if !ok {
		return
	}
	var req heroSlideRequest
	if !bindJSON(c, &req, "轮播信息不完整") {
		return
	}
	slide, err := a.heroSlides.Update(id, req.input())
	if err != nil {
		a.respondServiceError(c, err, "更新轮播失败")
		return
	}
	a.invalidate(c, TagHeroSlide)
	c.JSON(http.StatusOK, gin.H{"message": "轮播更新成功", "slide": slide})
}

// DeleteHeroSlide 删除轮播
func (a *API) DeleteHeroSlide(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的轮播ID")
	if !ok {
		return
	}
	if err := a.heroSlides.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除轮播失败")
		return
	}
	a.invalidate(c, TagHeroSlide)
	c.JSON(http.StatusOK, gin.H{"message": "轮播删除成功"})
}

// ReorderHeroSlides 需要传入全部轮播 id 的新顺序
func (a *API) ReorderHeroSlides(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.heroSlides.Reorder(req.IDs); err != nil {
		a.respondServiceError(c, err, "轮播排序失败")
		return
	}
	a.invalidate(c, TagHeroSlide)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
