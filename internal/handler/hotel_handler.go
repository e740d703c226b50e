package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type hotelRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Slug        string   `json:"slug" binding:"omitempty,max=200,slug"`
	RegionID    uint     `json:"region_id" binding:"required"`
	Summary     string   `json:"summary" binding:"max=500"`
	Description string   `json:"description"`
	Address     string   `json:"address" binding:"max=255"`
	Stars       int      `json:"stars" binding:"gte=0,lte=5"`
	PriceFrom   int64    `json:"price_from" binding:"gte=0"`
	Currency    string   `json:"currency"`
	Phone       string   `json:"phone" binding:"max=40"`
	Website     string   `json:"website" binding:"omitempty,url"`
	BookingURL  string   `json:"booking_url" binding:"omitempty,url"`
	Latitude    float64  `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude   float64  `json:"longitude" binding:"gte=-180,lte=180"`
	Amenities   []string `json:"amenities"`
	Status      string   `json:"status" binding:"omitempty,oneof=draft published"`
	SortOrder   *int     `json:"sort_order"`
	CoverURL    string   `json:"cover_url"`
	CoverWidth  int      `json:"cover_width"`
	CoverHeight int      `json:"cover_height"`
}

func (r hotelRequest) input() service.HotelInput {
	return service.HotelInput{
		Name:        r.Name,
		Slug:        r.Slug,
		RegionID:    r.RegionID,
		Summary:     r.Summary,
		Description: r.Description,
		Address:     r.Address,
		Stars:       r.Stars,
		PriceFrom:   r.PriceFrom,
		Currency:    r.Currency,
		Phone:       r.Phone,
		Website:     r.Website,
		BookingURL:  r.BookingURL,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Amenities:   r.Amenities,
		Status:      r.Status,
		SortOrder:   r.SortOrder,
		CoverURL:    r.CoverURL,
		CoverWidth:  r.CoverWidth,
		CoverHeight: r.CoverHeight,
	}
}

// ListHotels 后台酒店列表，支持区域、星级、关键字与状态筛选
func (a *API) ListHotels(c *gin.Context) {
	result, err := a.hotels.List(service.HotelFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		RegionID: queryUint(c, "region_id"),
		MinStars: queryInt(c, "min_stars", 0),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 20),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取酒店列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHotel 获取单个酒店
func (a *API) GetHotel(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的酒店ID")
	if !ok {
		return
	}
	hotel, err := a.hotels.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "获取酒店失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotel": hotel})
}

// CreateHotel 创建酒店
func (a *API) CreateHotel(c *gin.Context) {
	var req hotelRequest
	if !bindJSON(c, &req, "酒店信息不完整") {
		return
	}
	hotel, err := a.hotels.Create(req.input())
	if err != nil {
		a.respondServiceError(c, err, "创建酒店失败")
		return
	}
	a.invalidate(c, TagHotel, TagRegion)
	c.JSON(http.StatusCreated, gin.H{"message": "酒店创建成功", "hotel": hotel})
}

// UpdateHotel 更新酒店
func (a *API) UpdateHotel(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的酒店ID")
	if !ok {
		return
	}
	var req hotelRequest
	if !bindJSON(c, &req, "酒店信息不完整") {
		return
	}
	hotel, err := a.hotels.Update(id, req.input())
	if err != nil {
		a.respondServiceError(c, err, "更新酒店失败")
		return
	}
	a.invalidate(c, TagHotel, TagRegion, TagHeroSlide)
	c.JSON(http.StatusOK, gin.H{"message": "酒店更新成功", "hotel": hotel})
}

// DeleteHotel 删除酒店及其关联、评论与统计
func (a *API) DeleteHotel(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的酒店ID")
	if !ok {
		return
	}
	if err := a.hotels.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除酒店失败")
		return
	}
	a.invalidateContent(c, TagHotel, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "酒店删除成功"})
}

// ReorderHotels 按给定顺序重排酒店
func (a *API) ReorderHotels(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.hotels.Reorder(req.IDs); err != nil {
		a.respondServiceError(c, err, "酒店排序失败")
		return
	}
	a.invalidate(c, TagHotel, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
