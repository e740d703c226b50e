package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type contentRefPayload struct {
	Type string `json:"type" binding:"required"`
	ID   uint   `json:"id" binding:"required"`
}

func (p contentRefPayload) ref() service.ContentRef {
	return service.ContentRef{Type: p.Type, ID: p.ID}
}

type linkRequest struct {
	Source contentRefPayload `json:"source" binding:"required"`
	Target contentRefPayload `json:"target" binding:"required"`
}

type replaceLinksRequest struct {
	Source  contentRefPayload   `json:"source" binding:"required"`
	Targets []contentRefPayload `json:"targets" binding:"dive"`
}

// sourceFromQuery 读取 source_type / source_id 查询参数
func sourceFromQuery(c *gin.Context) (service.ContentRef, bool) {
	ref := service.ContentRef{Type: c.Query("source_type"), ID: queryUint(c, "source_id")}
	if ref.Type == "" || ref.ID == 0 {
		respondError(c, http.StatusBadRequest, "缺少关联来源")
		return ref, false
	}
	return ref, true
}

// ListContentLinks 列出某条内容的全部关联（含草稿目标）
func (a *API) ListContentLinks(c *gin.Context) {
	source, ok := sourceFromQuery(c)
	if !ok {
		return
	}
	links, err := a.links.List(source, false)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

// CreateContentLink 添加单条关联，重复添加返回已有记录
func (a *API) CreateContentLink(c *gin.Context) {
	var req linkRequest
	if !bindJSON(c, &req, "关联参数不完整") {
		return
	}
	link, err := a.links.Link(req.Source.ref(), req.Target.ref())
	if err != nil {
		a.respondServiceError(c, err, "添加关联失败")
		return
	}
	a.invalidate(c, TagContentLink)
	c.JSON(http.StatusOK, gin.H{"message": "关联已添加", "link": link})
}

// ReplaceContentLinks 以给定顺序整体替换关联列表
func (a *API) ReplaceContentLinks(c *gin.Context) {
	var req replaceLinksRequest
	if !bindJSON(c, &req, "关联参数不完整") {
		return
	}
	targets := make([]service.ContentRef, 0, len(req.Targets))
	for _, target := range req.Targets {
		targets = append(targets, target.ref())
	}
	source := req.Source.ref()
	if err := a.links.Replace(source, targets); err != nil {
		a.respondServiceError(c, err, "保存关联失败")
		return
	}
	a.invalidate(c, TagContentLink)

	links, err := a.links.List(source, false)
	if err != nil {
		a.respondServiceError(c, err, "获取关联内容失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "关联已保存", "links": links})
}

// DeleteContentLink 删除单条关联，目标通过 target_type / target_id 查询参数指定
func (a *API) DeleteContentLink(c *gin.Context) {
	source, ok := sourceFromQuery(c)
	if !ok {
		return
	}
	target := service.ContentRef{Type: c.Query("target_type"), ID: queryUint(c, "target_id")}
	if target.Type == "" || target.ID == 0 {
		respondError(c, http.StatusBadRequest, "缺少关联目标")
		return
	}
	if err := a.links.Unlink(source, target); err != nil {
		a.respondServiceError(c, err, "删除关联失败")
		return
	}
	a.invalidate(c, TagContentLink)
	c.JSON(http.StatusOK, gin.H{"message": "关联已删除"})
}
