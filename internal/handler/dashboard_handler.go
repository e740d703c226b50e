package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard 后台首页：各类内容数量、浏览统计、热门内容与待审核评论数
func (a *API) GetDashboard(c *gin.Context) {
	overview, err := a.analytics.Overview(queryInt(c, "top", 5))
	if err != nil {
		a.respondServiceError(c, err, "获取统计数据失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":     currentUser(c),
		"overview": overview,
	})
}
