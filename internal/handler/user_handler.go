package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/service"
)

type userRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password"`
	Name     string `json:"name" binding:"max=120"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"omitempty,oneof=admin editor"`
}

func (r userRequest) input() service.UserInput {
	return service.UserInput{
		Username: r.Username,
		Password: r.Password,
		Name:     r.Name,
		Email:    r.Email,
		Role:     r.Role,
	}
}

// ListUsers 获取后台用户列表
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.auth.ListUsers()
	if err != nil {
		a.respondServiceError(c, err, "获取用户列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser 创建后台用户
func (a *API) CreateUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req, "用户信息不完整") {
		return
	}
	user, err := a.auth.CreateUser(req.input())
	if err != nil {
		a.respondServiceError(c, err, "创建用户失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "用户创建成功", "user": user})
}

// UpdateUser 更新用户资料、角色或密码
func (a *API) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的用户ID")
	if !ok {
		return
	}
	var req userRequest
	if !bindJSON(c, &req, "用户信息不完整") {
		return
	}
	user, err := a.auth.UpdateUser(id, req.input())
	if err != nil {
		a.respondServiceError(c, err, "更新用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "用户更新成功", "user": user})
}

// DeleteUser 删除用户，不能删除自己
func (a *API) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id", "无效的用户ID")
	if !ok {
		return
	}
	var actorID uint
	if actor := currentUser(c); actor != nil {
		actorID = actor.ID
	}
	if err := a.auth.DeleteUser(id, actorID); err != nil {
		a.respondServiceError(c, err, "删除用户失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "用户删除成功"})
}
