package handler

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
	"go.uber.org/zap"
)

const (
	sessionUserKey = "user_id"
	ctxUserKey     = "currentUser"
	ctxTokenKey    = "tokenID"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login 校验账号密码并写入 cookie 会话，供后台页面使用。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "用户名和密码不能为空")
		return
	}

	user, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		a.respondServiceError(c, err, "登录失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		a.log.Error("save session", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "登录成功", "user": user})
}

// Logout 清空 cookie 会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		a.log.Warn("clear session", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// IssueToken 用账号密码换取 API 访问令牌。
func (a *API) IssueToken(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "用户名和密码不能为空") {
		return
	}

	user, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		a.respondServiceError(c, err, "登录失败")
		return
	}

	token, err := a.auth.IssueToken(user, service.SessionMeta{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	})
	if err != nil {
		a.respondServiceError(c, err, "签发令牌失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":      token.Token,
		"token_id":   token.TokenID,
		"expires_at": token.ExpiresAt,
		"user":       user,
	})
}

// RevokeToken 吊销当前请求所携带的令牌；cookie 会话调用时等同于登出。
func (a *API) RevokeToken(c *gin.Context) {
	tokenID := c.GetString(ctxTokenKey)
	if tokenID == "" {
		a.Logout(c)
		return
	}
	if err := a.auth.Revoke(tokenID); err != nil {
		a.respondServiceError(c, err, "吊销令牌失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "令牌已吊销"})
}

// Me 返回当前登录用户
func (a *API) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// AuthRequired 接受 Bearer 令牌或 cookie 会话，两者都没有时返回 401。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				respondError(c, http.StatusUnauthorized, "无效的认证头")
				c.Abort()
				return
			}
			user, claims, err := a.auth.Authenticate(strings.TrimSpace(raw))
			if err != nil {
				if statusFor(err) == http.StatusUnauthorized {
					respondError(c, http.StatusUnauthorized, "登录已失效，请重新登录")
				} else {
					a.respondServiceError(c, err, "认证失败")
				}
				c.Abort()
				return
			}
			c.Set(ctxUserKey, user)
			c.Set(ctxTokenKey, claims.ID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserKey).(uint)
		if !ok || userID == 0 {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		user, err := a.auth.GetUser(userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				session.Clear()
				_ = session.Save()
				respondError(c, http.StatusUnauthorized, "请先登录")
			} else {
				a.respondServiceError(c, err, "认证失败")
			}
			c.Abort()
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RoleRequired 必须挂在 AuthRequired 之后。
func (a *API) RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !slices.Contains(roles, user.Role) {
			respondError(c, http.StatusForbidden, "没有权限执行该操作")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *db.User {
	value, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*db.User)
	return user
}
