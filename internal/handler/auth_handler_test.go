package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
)

func newAuthEngine(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("tourcms_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/admin/login", api.Login)
	r.POST("/admin/logout", api.Logout)
	r.POST("/admin/api/token", api.IssueToken)

	secured := r.Group("/admin/api", api.AuthRequired())
	secured.GET("/me", api.Me)
	secured.DELETE("/token", api.RevokeToken)
	secured.GET("/users", api.RoleRequired(db.RoleAdmin), api.ListUsers)
	return r
}

func doJSON(r http.Handler, method, target string, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionLoginGrantsDashboardAccess(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	seedAuthor(t, api)
	r := newAuthEngine(api)

	w := doJSON(r, http.MethodGet, "/admin/api/me", nil, nil)
	expectStatus(t, w, http.StatusUnauthorized)

	w = doJSON(r, http.MethodPost, "/admin/login", map[string]string{"username": "author", "password": "wrong-pass"}, nil)
	expectStatus(t, w, http.StatusUnauthorized)

	w = doJSON(r, http.MethodPost, "/admin/login", map[string]string{"username": "author", "password": "password123"}, nil)
	expectStatus(t, w, http.StatusOK)
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	w = doJSON(r, http.MethodGet, "/admin/api/me", nil, func(req *http.Request) {
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
	})
	expectStatus(t, w, http.StatusOK)
	user := decodeBody(t, w)["user"].(map[string]any)
	if user["username"] != "author" {
		t.Fatalf("unexpected user %v", user)
	}
}

func TestBearerTokenLifecycle(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	seedAuthor(t, api)
	r := newAuthEngine(api)

	w := doJSON(r, http.MethodPost, "/admin/api/token", map[string]string{"username": "author", "password": "password123"}, nil)
	expectStatus(t, w, http.StatusCreated)
	token, _ := decodeBody(t, w)["token"].(string)
	if token == "" {
		t.Fatal("expected token in response")
	}
	bearer := func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }

	expectStatus(t, doJSON(r, http.MethodGet, "/admin/api/me", nil, bearer), http.StatusOK)
	expectStatus(t, doJSON(r, http.MethodDelete, "/admin/api/token", nil, bearer), http.StatusOK)
	expectStatus(t, doJSON(r, http.MethodGet, "/admin/api/me", nil, bearer), http.StatusUnauthorized)

	malformed := func(req *http.Request) { req.Header.Set("Authorization", "Token abc") }
	expectStatus(t, doJSON(r, http.MethodGet, "/admin/api/me", nil, malformed), http.StatusUnauthorized)
}

func TestRoleRequiredRejectsEditors(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	seedAuthor(t, api)
	if _, err := api.auth.CreateUser(service.UserInput{Username: "editor", Password: "password123", Role: db.RoleEditor}); err != nil {
		t.Fatalf("create editor: %v", err)
	}
	r := newAuthEngine(api)

	tokenFor := func(username string) string {
		w := doJSON(r, http.MethodPost, "/admin/api/token", map[string]string{"username": username, "password": "password123"}, nil)
		expectStatus(t, w, http.StatusCreated)
		return decodeBody(t, w)["token"].(string)
	}

	editor := tokenFor("editor")
	w := doJSON(r, http.MethodGet, "/admin/api/users", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+editor)
	})
	expectStatus(t, w, http.StatusForbidden)

	admin := tokenFor("author")
	w = doJSON(r, http.MethodGet, "/admin/api/users", nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+admin)
	})
	expectStatus(t, w, http.StatusOK)
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	admin := seedAuthor(t, api)

	req := httptest.NewRequest(http.MethodDelete, "/admin/api/users/1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = idParams(admin.ID)
	c.Set(ctxUserKey, admin)

	api.DeleteUser(c)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestDeleteUserWithPostsConflicts(t *testing.T) {
	api, _, _ := setupTestAPI(t)
	admin := seedAuthor(t, api)
	writer, err := api.auth.CreateUser(service.UserInput{Username: "writer", Password: "password123", Role: db.RoleEditor})
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	seedPublishedPost(t, api, writer.ID, "Cork forests", "Montado walks")

	req := httptest.NewRequest(http.MethodDelete, "/admin/api/users/"+itoa(writer.ID), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = idParams(writer.ID)
	c.Set(ctxUserKey, admin)

	api.DeleteUser(c)
	expectStatus(t, w, http.StatusConflict)
}
