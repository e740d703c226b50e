package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type galleryPayload struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"omitempty,max=200,slug"`
	Description string `json:"description"`
	RegionID    *uint  `json:"region_id"`
	Status      string `json:"status" binding:"omitempty,oneof=draft published"`
	SortOrder   *int   `json:"sort_order"`
	CoverURL    string `json:"cover_url"`
	CoverWidth  int    `json:"cover_width"`
	CoverHeight int    `json:"cover_height"`
}

func (p galleryPayload) toInput() service.GalleryInput {
	return service.GalleryInput{
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		RegionID:    p.RegionID,
		Status:      p.Status,
		SortOrder:   p.SortOrder,
		CoverURL:    p.CoverURL,
		CoverWidth:  p.CoverWidth,
		CoverHeight: p.CoverHeight,
	}
}

type photoPayload struct {
	ImageURL    string `json:"image_url" binding:"required"`
	ImageWidth  int    `json:"image_width" binding:"gte=0"`
	ImageHeight int    `json:"image_height" binding:"gte=0"`
	Caption     string `json:"caption" binding:"max=500"`
}

func (p photoPayload) toInput() service.PhotoInput {
	return service.PhotoInput{
		ImageURL:    p.ImageURL,
		ImageWidth:  p.ImageWidth,
		ImageHeight: p.ImageHeight,
		Caption:     p.Caption,
	}
}

// 照片可作为关联目标出现在其他内容页。
var galleryTags = []string{TagGallery, TagRegion, TagContentLink, TagHeroSlide}

// ListGalleries returns galleries for the dashboard.
func (a *API) ListGalleries(c *gin.Context) {
	result, err := a.galleries.List(service.GalleryFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		RegionID: queryUint(c, "region_id"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 20),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取相册列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetGallery returns one gallery with its ordered photos.
func (a *API) GetGallery(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的相册ID")
	if !ok {
		return
	}
	gallery, err := a.galleries.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "获取相册失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"gallery": gallery})
}

// CreateGallery creates a new gallery.
func (a *API) CreateGallery(c *gin.Context) {
	var payload galleryPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	gallery, err := a.galleries.Create(payload.toInput())
	if err != nil {
		a.respondServiceError(c, err, "创建相册失败")
		return
	}
	a.invalidate(c, galleryTags...)
	c.JSON(http.StatusCreated, gin.H{"message": "相册创建成功", "gallery": gallery})
}

// UpdateGallery updates gallery metadata.
func (a *API) UpdateGallery(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的相册ID")
	if !ok {
		return
	}
	var payload galleryPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	gallery, err := a.galleries.Update(id, payload.toInput())
	if err != nil {
		a.respondServiceError(c, err, "更新相册失败")
		return
	}
	a.invalidate(c, galleryTags...)
	c.JSON(http.StatusOK, gin.H{"message": "相册更新成功", "gallery": gallery})
}

// DeleteGallery removes a gallery and all of its photos.
func (a *API) DeleteGallery(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的相册ID")
	if !ok {
		return
	}
	if err := a.galleries.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除相册失败")
		return
	}
	a.invalidateContent(c, TagGallery, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "相册删除成功"})
}

// ReorderGalleries updates gallery display order.
func (a *API) ReorderGalleries(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.galleries.Reorder(req.IDs); err != nil {
		a.respondServiceError(c, err, "相册排序失败")
		return
	}
	a.invalidate(c, TagGallery, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}

// AddPhoto appends a photo to a gallery.
func (a *API) AddPhoto(c *gin.Context) {
	galleryID, ok := idParam(c, "id", "无效的相册ID")
	if !ok {
		return
	}
	var payload photoPayload
	if !bindJSON(c, &payload, "请上传照片") {
		return
	}
	photo, err := a.galleries.AddPhoto(galleryID, payload.toInput())
	if err != nil {
		a.respondServiceError(c, err, "添加照片失败")
		return
	}
	a.invalidate(c, galleryTags...)
	c.JSON(http.StatusCreated, gin.H{"message": "照片添加成功", "photo": photo})
}

// UpdatePhoto edits a photo inside a gallery.
func (a *API) UpdatePhoto(c *gin.Context) {
	galleryID, ok := idParam(c, "id", "无效的相册ID")
	if !ok {
		return
	}
	photoID, ok := idParam(c, "photoID", "无效的照片ID")
	if !ok {
		return
	}
	var payload photoPayload
	if !bindJSON(c, &payload, "请上传照片") {
		return
	}
	photo, err := a.galleries.UpdatePhoto(galleryID, photoID, payload.toInput())
	if err != nil {
		a.respondServiceError(c, err, "更新照片失败")
		return
	}
	a.invalidate(c, galleryTags...)
	c.JSON(http.StatusOK, gin.H{"message": "照片更新成功", "photo": photo})
}

// DeletePhoto removes a photo from a gallery.
func (a *API) DeletePhoto(c *gin.Context) {
	galleryID, ok := idParam(c, "id", "无效的相册ID")
	if !ok {
		return
	}
	photoID, ok := idParam(c, "photoID", "无效的照片ID")
	if !ok {
		return
	}
	if err := a.galleries.DeletePhoto(galleryID, photoID); err != nil {
		a.respondServiceError(c, err, "删除照片失败")
		return
	}
	a.invalidate(c, galleryTags...)
	c.JSON(http.StatusOK, gin.H{"message": "照片删除成功"})
}

// ReorderPhotos updates photo order within one gallery.
func (a *API) ReorderPhotos(c *gin.Context) {
	galleryID, ok := idParam(c, "id", "无效的相册ID")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.galleries.ReorderPhotos(galleryID, req.IDs); err != nil {
		a.respondServiceError(c, err, "照片排序失败")
		return
	}
	a.invalidate(c, TagGallery)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
