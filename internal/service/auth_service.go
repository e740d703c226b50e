package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tourcms/internal/auth"
	"github.com/tourcms/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionRevoked     = errors.New("session has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUsernameInvalid    = errors.New("username is invalid")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrRoleInvalid        = errors.New("role is invalid")
	ErrUserEmailInvalid   = errors.New("email is invalid")
	ErrUserHasContent     = errors.New("user still owns posts")
	ErrDeleteSelf         = errors.New("cannot delete the signed-in user")
)

// SessionMeta 记录签发令牌时的客户端信息。
type SessionMeta struct {
	UserAgent string
	IP        string
}

// IssuedToken is a freshly signed bearer token.
type IssuedToken struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserInput represents fields accepted when creating or updating a user.
// An empty Password on update keeps the current one.
type UserInput struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     string
}

// AuthService verifies credentials and tracks issued tokens.
type AuthService struct {
	db     *gorm.DB
	tokens *auth.Manager
	now    func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(gdb *gorm.DB, tokens *auth.Manager) *AuthService {
	return &AuthService{db: gdb, tokens: tokens, now: time.Now}
}

// Login checks a username/password pair.
func (s *AuthService) Login(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// IssueToken signs a bearer token for user and records the session.
func (s *AuthService) IssueToken(user *db.User, meta SessionMeta) (*IssuedToken, error) {
	raw, claims, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	session := db.Session{
		TokenID:   claims.ID,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		UserAgent: truncate(meta.UserAgent, 255),
		IP:        truncate(meta.IP, 64),
	}
	if err := s.db.Omit("User").Create(&session).Error; err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	return &IssuedToken{Token: raw, TokenID: claims.ID, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate parses a bearer token, rejects revoked sessions and returns
// the owning user.
func (s *AuthService) Authenticate(raw string) (*db.User, *auth.Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	var session db.Session
	if err := s.db.Where("token_id = ?", claims.ID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSessionRevoked
		}
		return nil, nil, err
	}
	if session.RevokedAt != nil {
		return nil, nil, ErrSessionRevoked
	}
	user, err := s.GetUser(session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrSessionRevoked
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Revoke marks the session with tokenID as revoked. Unknown ids are ignored.
func (s *AuthService) Revoke(tokenID string) error {
	now := s.now()
	return s.db.Model(&db.Session{}).
		Where("token_id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", &now).Error
}

// PurgeExpiredSessions deletes sessions that expired before now.
func (s *AuthService) PurgeExpiredSessions() (int64, error) {
	result := s.db.Where("expires_at < ?", s.now()).Delete(&db.Session{})
	return result.RowsAffected, result.Error
}

// ListUsers returns all dashboard users.
func (s *AuthService) ListUsers() ([]db.User, error) {
	var users []db.User
	if err := s.db.Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a user by id.
func (s *AuthService) GetUser(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser adds a dashboard user.
func (s *AuthService) CreateUser(input UserInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || len(username) > 64 || strings.ContainsAny(username, " \t\n") {
		return nil, ErrUsernameInvalid
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	user := db.User{Username: username}
	if err := applyUser(&user, input); err != nil {
		return nil, err
	}
	if err := setPassword(&user, input.Password); err != nil {
		return nil, err
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes profile, role and optionally the password. Changing the
// password revokes every open session of the user.
func (s *AuthService) UpdateUser(id uint, input UserInput) (*db.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if err := applyUser(user, input); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if input.Password != "" {
			if len(input.Password) < minPasswordLength {
				return ErrPasswordTooShort
			}
			if err := setPassword(user, input.Password); err != nil {
				return err
			}
			now := s.now()
			if err := tx.Model(&db.Session{}).
				Where("user_id = ? AND revoked_at IS NULL", user.ID).
				Update("revoked_at", &now).Error; err != nil {
				return err
			}
		}
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user and their sessions. actorID is the signed-in user.
func (s *AuthService) DeleteUser(id, actorID uint) error {
	if id == actorID {
		return ErrDeleteSelf
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var posts int64
		if err := tx.Model(&db.Post{}).Where("user_id = ?", id).Count(&posts).Error; err != nil {
			return err
		}
		if posts > 0 {
			return ErrUserHasContent
		}
		if err := tx.Where("user_id = ?", id).Delete(&db.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

func applyUser(user *db.User, input UserInput) error {
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = db.RoleEditor
	}
	if role != db.RoleAdmin && role != db.RoleEditor {
		return ErrRoleInvalid
	}
	email := strings.TrimSpace(input.Email)
	if email != "" {
		if !validEmail(email) {
			return ErrUserEmailInvalid
		}
	}
	user.Name = strings.TrimSpace(input.Name)
	user.Email = email
	user.Role = role
	return nil
}

func setPassword(user *db.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	return nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
