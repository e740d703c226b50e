package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type postRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255,slug"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	TagIDs      []uint `json:"tag_ids"`
	RegionID    *uint  `json:"region_id"`
	CoverURL    string `json:"cover_url"`
	CoverWidth  int    `json:"cover_width"`
	CoverHeight int    `json:"cover_height"`
}

func (r postRequest) input(userID uint) service.PostInput {
	return service.PostInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Content:     r.Content,
		Summary:     r.Summary,
		TagIDs:      r.TagIDs,
		RegionID:    r.RegionID,
		UserID:      userID,
		CoverURL:    r.CoverURL,
		CoverWidth:  r.CoverWidth,
		CoverHeight: r.CoverHeight,
	}
}

type publishRequest struct {
	PublishedAt *time.Time `json:"published_at"`
}

type previewRequest struct {
	Content string `json:"content"`
}

var postTags = []string{TagPost, TagTag, TagRegion, TagContentLink, TagHeroSlide}

// ListPosts 后台文章列表，附带已发布与草稿计数
func (a *API) ListPosts(c *gin.Context) {
	result, err := a.posts.List(service.PostFilter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		RegionID: queryUint(c, "region_id"),
		TagNames: c.QueryArray("tags"),
		Page:     queryInt(c, "page", 1),
		PerPage:  queryInt(c, "per_page", 10),
	})
	if err != nil {
		a.respondServiceError(c, err, "获取文章列表失败")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPost 获取单篇文章
func (a *API) GetPost(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的文章ID")
	if !ok {
		return
	}
	post, err := a.posts.Get(id)
	if err != nil {
		a.respondServiceError(c, err, "获取文章失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost 创建草稿，作者为当前登录用户
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "文章标题不能为空") {
		return
	}
	var userID uint
	if user := currentUser(c); user != nil {
		userID = user.ID
	}
	post, err := a.posts.Create(req.input(userID))
	if err != nil {
		a.respondServiceError(c, err, "创建文章失败")
		return
	}
	a.invalidate(c, TagPost, TagTag)
	c.JSON(http.StatusCreated, gin.H{"message": "文章创建成功", "post": post})
}

// UpdatePost 更新文章内容，发布状态保持不变
func (a *API) UpdatePost(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的文章ID")
	if !ok {
		return
	}
	var req postRequest
	if !bindJSON(c, &req, "文章标题不能为空") {
		return
	}
	post, err := a.posts.Update(id, req.input(0))
	if err != nil {
		a.respondServiceError(c, err, "更新文章失败")
		return
	}
	a.invalidate(c, postTags...)
	c.JSON(http.StatusOK, gin.H{"message": "文章更新成功", "post": post})
}

// DeletePost 删除文章
func (a *API) DeletePost(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的文章ID")
	if !ok {
		return
	}
	if err := a.posts.Delete(id); err != nil {
		a.respondServiceError(c, err, "删除文章失败")
		return
	}
	a.invalidateContent(c, TagPost, TagTag, TagRegion)
	c.JSON(http.StatusOK, gin.H{"message": "文章删除成功"})
}

// PublishPost 发布文章，缺少标题、正文或封面时返回 400
func (a *API) PublishPost(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的文章ID")
	if !ok {
		return
	}
	var req publishRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "发布时间格式错误") {
		return
	}
	post, err := a.posts.Publish(id, req.PublishedAt)
	if err != nil {
		a.respondServiceError(c, err, "发布文章失败")
		return
	}
	a.invalidate(c, postTags...)
	c.JSON(http.StatusOK, gin.H{"message": "文章已发布", "post": post})
}

// UnpublishPost 撤回为草稿
func (a *API) UnpublishPost(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的文章ID")
	if !ok {
		return
	}
	post, err := a.posts.Unpublish(id)
	if err != nil {
		a.respondServiceError(c, err, "撤回文章失败")
		return
	}
	a.invalidate(c, postTags...)
	c.JSON(http.StatusOK, gin.H{"message": "文章已撤回", "post": post})
}

// PreviewPost 渲染编辑器中的 markdown，不落库
func (a *API) PreviewPost(c *gin.Context) {
	var req previewRequest
	if !bindJSON(c, &req, "请求参数不合法") {
		return
	}
	rendered, err := renderMarkdown(req.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "渲染预览失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": rendered})
}
