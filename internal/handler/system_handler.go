package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type systemSettingsRequest struct {
	SiteName     string `json:"site_name" binding:"max=120"`
	SiteLogoURL  string `json:"site_logo_url" binding:"max=500"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone" binding:"max=40"`
	InstagramURL string `json:"instagram_url" binding:"omitempty,url"`
	FacebookURL  string `json:"facebook_url" binding:"omitempty,url"`
	YouTubeURL   string `json:"youtube_url" binding:"omitempty,url"`
}

// GetSystemSettings 返回当前系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		a.respondServiceError(c, err, "获取系统设置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var req systemSettingsRequest
	if !bindJSON(c, &req, "请求参数不合法") {
		return
	}

	settings, err := a.system.UpdateSettings(service.SiteSettings{
		SiteName:     req.SiteName,
		SiteLogoURL:  req.SiteLogoURL,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		InstagramURL: req.InstagramURL,
		FacebookURL:  req.FacebookURL,
		YouTubeURL:   req.YouTubeURL,
	})
	if err != nil {
		a.respondServiceError(c, err, "保存系统设置失败")
		return
	}

	a.invalidate(c, TagSettings)
	c.JSON(http.StatusOK, gin.H{"message": "系统设置已更新", "settings": settings})
}
