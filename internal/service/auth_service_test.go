package service

import (
	"errors"
	"testing"
	"time"

	"github.com/tourcms/internal/auth"
	"github.com/tourcms/internal/db"
)

func newTestAuthService(t *testing.T) (*AuthService, *db.User) {
	t.Helper()
	gdb := setupServiceTestDB(t)
	manager, err := auth.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	svc := NewAuthService(gdb, manager)
	admin, err := svc.CreateUser(UserInput{Username: "root", Password: "supersecret", Role: db.RoleAdmin})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return svc, admin
}

func TestAuthServiceLoginAndTokens(t *testing.T) {
	svc, admin := newTestAuthService(t)

	if _, err := svc.Login("root", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("ghost", "supersecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	user, err := svc.Login(" root ", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != admin.ID {
		t.Fatalf("unexpected user %d", user.ID)
	}

	issued, err := svc.IssueToken(user, SessionMeta{UserAgent: "curl/8", IP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	authed, claims, err := svc.Authenticate(issued.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != admin.ID || claims.Role != db.RoleAdmin || claims.ID != issued.TokenID {
		t.Fatalf("unexpected authentication result: %+v %+v", authed, claims)
	}

	if err := svc.Revoke(issued.TokenID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, _, err := svc.Authenticate(issued.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
	if _, _, err := svc.Authenticate("garbage"); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthServicePasswordChangeRevokesSessions(t *testing.T) {
	svc, admin := newTestAuthService(t)

	issued, err := svc.IssueToken(admin, SessionMeta{})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.UpdateUser(admin.ID, UserInput{Role: db.RoleAdmin, Password: "short"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, _, err := svc.Authenticate(issued.Token); err != nil {
		t.Fatalf("failed update should not revoke: %v", err)
	}

	if _, err := svc.UpdateUser(admin.ID, UserInput{Role: db.RoleAdmin, Password: "another-secret"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, _, err := svc.Authenticate(issued.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected password change to revoke sessions, got %v", err)
	}
	if _, err := svc.Login("root", "another-secret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestAuthServiceUserManagement(t *testing.T) {
	svc, admin := newTestAuthService(t)

	if _, err := svc.CreateUser(UserInput{Username: "root", Password: "password123"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.CreateUser(UserInput{Username: "has space", Password: "password123"}); !errors.Is(err, ErrUsernameInvalid) {
		t.Fatalf("expected ErrUsernameInvalid, got %v", err)
	}
	if _, err := svc.CreateUser(UserInput{Username: "bob", Password: "password123", Role: "owner"}); !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("expected ErrRoleInvalid, got %v", err)
	}
	if _, err := svc.CreateUser(UserInput{Username: "bob", Password: "password123", Email: "Bob <bob@example.com>"}); !errors.Is(err, ErrUserEmailInvalid) {
		t.Fatalf("expected ErrUserEmailInvalid, got %v", err)
	}

	editor, err := svc.CreateUser(UserInput{Username: "bob", Password: "password123", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("create editor: %v", err)
	}
	if editor.Role != db.RoleEditor {
		t.Fatalf("expected default editor role, got %s", editor.Role)
	}

	users, err := svc.ListUsers()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	if err := svc.DeleteUser(admin.ID, admin.ID); !errors.Is(err, ErrDeleteSelf) {
		t.Fatalf("expected ErrDeleteSelf, got %v", err)
	}
	post, err := NewPostService(svc.db).Create(PostInput{Title: "Editor notes", Content: "draft", UserID: editor.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := svc.DeleteUser(editor.ID, admin.ID); !errors.Is(err, ErrUserHasContent) {
		t.Fatalf("expected ErrUserHasContent, got %v", err)
	}
	if err := NewPostService(svc.db).Delete(post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if err := svc.DeleteUser(editor.ID, admin.ID); err != nil {
		t.Fatalf("delete editor: %v", err)
	}
	if err := svc.DeleteUser(editor.ID, admin.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthServicePurgeExpiredSessions(t *testing.T) {
	svc, admin := newTestAuthService(t)

	if _, err := svc.IssueToken(admin, SessionMeta{}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	purged, err := svc.PurgeExpiredSessions()
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 0 {
		t.Fatalf("live sessions must survive, purged %d", purged)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	purged, err = svc.PurgeExpiredSessions()
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 expired session purged, got %d", purged)
	}
	var remaining int64
	if err := svc.db.Model(&db.Session{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected no sessions left, got %d", remaining)
	}
}
