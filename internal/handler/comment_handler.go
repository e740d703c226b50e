package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type commentRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=post hotel activity video gallery"`
	ContentID   uint   `json:"content_id" binding:"required"`
	ParentID    *uint  `json:"parent_id"`
	AuthorName  string `json:"author_name" binding:"required,max=80"`
	AuthorEmail string `json:"author_email" binding:"omitempty,email"`
	Body        string `json:"body" binding:"required"`
}

type moderateRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected spam"`
}

// ListCommentThread 返回某条内容下已审核通过的评论树
func (a *API) ListCommentThread(c *gin.Context) {
	contentType := c.Query("content_type")
	contentID := queryUint(c, "content_id")
	if contentType == "" || contentID == 0 {
		respondError(c, http.StatusBadRequest, "缺少评论目标")
		return
	}

	thread, err := a.comments.Thread(contentType, contentID)
	if err != nil {
		a.respondServiceError(c, err, "获取评论失败")
		return
	}
	count, err := a.comments.CountApproved(contentType, contentID)
	if err != nil {
		a.respondServiceError(c, err, "获取评论失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": thread, "count": count})
}

// CreateComment 访客提交评论，进入待审核状态；同一访客提交过快返回 429
func (a *API) CreateComment(c *gin.Context) {
	var req commentRequest
	if !bindJSON(c, &req, "请填写昵称与评论内容") {
		return
	}

	comment, err := a.comments.Create(service.CommentInput{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		ParentID:    req.ParentID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Body:        req.Body,
		VisitorID:   a.ensureVisitorID(c),
		ClientIP:    c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrCommentRateLimited) {
			c.Header("Retry-After", "60")
			respondError(c, http.StatusTooManyRequests, "评论过于频繁，请稍后再试")
			return
		}
		a.respondServiceError(c, err, "提交评论失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "评论已提交，审核后显示", "comment": comment})
}

// ListComments 后台评论列表，按状态与目标筛选
func (a *API) ListComments(c *gin.Context) {
	result, err := a.comments.List(service.CommentFilter{
		Status:      c.Query("status"),
		ContentType: c.Query("content_type"),
		ContentID:   queryUint(c, "content_id"),
		Page:        queryInt(c, "page", 1),
		PerPage:     queryInt(c, "per_page", 20),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取评论列表失败")
		return
	}
	pending, err := a.comments.PendingCount()
	if err != nil {
		a.respondServiceError(c, err, "获取评论列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"pending":     pending,
	})
}

// ModerateComment 修改评论审核状态
func (a *API) ModerateComment(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的评论ID")
	if !ok {
		return
	}
	var req moderateRequest
	if !bindJSON(c, &req, "评论状态无效") {
		return
	}
	comment, err := a.comments.Moderate(id, req.Status)
	if err != nil {
		a.respondServiceError(c, err, "更新评论状态失败")
		return
	}
	a.invalidate(c, TagComment)
	c.JSON(http.StatusOK, gin.H{"message": "评论状态已更新", "comment": comment})
}

// DeleteComment 删除评论及其所有回复
func (a *API) DeleteComment(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的评论ID")
	if !ok {
		return
	}
	if err := a.comments.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除评论失败")
		return
	}
	a.invalidate(c, TagComment)
	c.JSON(http.StatusOK, gin.H{"message": "评论删除成功"})
}
