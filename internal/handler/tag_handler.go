package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type tagRequest struct {
	Name string `json:"name" binding:"required,max=80"`
}

// GetTags 获取标签列表，附带关联文章数
func (a *API) GetTags(c *gin.Context) {
	tags, err := a.tags.List()
	if err != nil {
		a.respondServiceError(c, err, "获取标签列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// CreateTag 创建新标签
func (a *API) CreateTag(c *gin.Context) {
	var req tagRequest
	if !bindJSON(c, &req, "标签名称不能为空") {
		return
	}

	tag, err := a.tags.Create(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTagExists):
			respondError(c, http.StatusConflict, "标签已存在")
		case errors.Is(err, service.ErrTagNameMissing):
			respondError(c, http.StatusBadRequest, "标签名称不能为空")
		default:
			a.respondServiceError(c, err, "创建标签失败")
		}
		return
	}

	a.invalidate(c, TagTag)
	c.JSON(http.StatusCreated, gin.H{"message": "标签创建成功", "tag": tag})
}

// UpdateTag 更新标签
func (a *API) UpdateTag(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的标签ID")
	if !ok {
		return
	}

	var req tagRequest
	if !bindJSON(c, &req, "标签名称不能为空") {
		return
	}

	tag, err := a.tags.Update(id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTagExists):
			respondError(c, http.StatusConflict, "标签名已存在")
		case errors.Is(err, service.ErrTagNotFound):
			respondError(c, http.StatusNotFound, "标签不存在")
		default:
			a.respondServiceError(c, err, "更新标签失败")
		}
		return
	}

	a.invalidate(c, TagTag, TagPost)
	c.JSON(http.StatusOK, gin.H{"message": "标签更新成功", "tag": tag})
}

// DeleteTag 删除标签，仍被文章引用时拒绝
func (a *API) DeleteTag(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的标签ID")
	if !ok {
		return
	}

	if err := a.tags.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrTagInUse):
			respondError(c, http.StatusConflict, "标签正在被文章使用，无法删除")
		case errors.Is(err, service.ErrTagNotFound):
			respondError(c, http.StatusNotFound, "标签不存在")
		default:
			a.respondServiceError(c, err, "删除标签失败")
		}
		return
	}

	a.invalidate(c, TagTag)
	c.JSON(http.StatusOK, gin.H{"message": "标签删除成功"})
}

// ReorderTags 调整标签顺序
func (a *API) ReorderTags(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req, "排序参数无效") {
		return
	}
	if err := a.tags.Reorder(req.IDs); err != nil {
		a.respondServiceError(c, err, "标签排序失败")
		return
	}
	a.invalidate(c, TagTag)
	c.JSON(http.StatusOK, gin.H{"message": "排序已更新"})
}
