package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User 定义了后台用户模型
type User struct {
	Model
	Username string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"size:120" json:"name"`
	Email    string `gorm:"size:255" json:"email"`
	Role     string `gorm:"size:16;not null;default:editor" json:"role"`
}

// Session 记录签发过的访问令牌，登出或禁用时据此吊销。
type Session struct {
	Model
	TokenID   string     `gorm:"size:64;uniqueIndex;not null" json:"token_id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	User      User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UserAgent string     `gorm:"size:255" json:"user_agent"`
	IP        string     `gorm:"size:64" json:"ip"`
}

// TableName 避免与 gin-contrib/sessions 的概念混淆。
func (Session) TableName() string {
	return "auth_sessions"
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的管理员。
func EnsureUser(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return gdb.Create(&User{Username: trimmedUser, Password: string(hashed), Role: RoleAdmin}).Error
	}

	return nil
}
