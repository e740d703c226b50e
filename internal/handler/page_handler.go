package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type pagePayload struct {
	Title   string `json:"title" binding:"required,max=200"`
	Summary string `json:"summary" binding:"max=500"`
	Content string `json:"content" binding:"required"`
}

// ListPages 后台静态页面列表
func (a *API) ListPages(c *gin.Context) {
	pages, err := a.pages.List()
	if err != nil {
		a.respondServiceError(c, err, "获取页面列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GetPage 按 slug 读取页面原始 markdown
func (a *API) GetPage(c *gin.Context) {
	page, err := a.pages.GetBySlug(c.Param("slug"))
	if err != nil {
		a.respondServiceError(c, err, "加载页面失败，请稍后再试")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page})
}

// SavePage 创建或覆盖 slug 对应的页面
func (a *API) SavePage(c *gin.Context) {
	var payload pagePayload
	if !bindJSON(c, &payload, "请填写页面标题与内容") {
		return
	}

	page, err := a.pages.SaveBySlug(c.Param("slug"), service.PageInput{
		Title:   payload.Title,
		Summary: payload.Summary,
		Content: payload.Content,
	})
	if err != nil {
		a.respondServiceError(c, err, "保存失败，请稍后重试")
		return
	}

	a.invalidate(c, TagPage)
	c.JSON(http.StatusOK, gin.H{"message": "页面已更新", "page": page})
}

// DeletePage 删除页面
func (a *API) DeletePage(c *gin.Context) {
	if err := a.pages.Delete(c.Param("slug")); err != nil {
		a.respondServiceError(c, err, "删除页面失败")
		return
	}
	a.invalidate(c, TagPage)
	c.JSON(http.StatusOK, gin.H{"message": "页面删除成功"})
}
