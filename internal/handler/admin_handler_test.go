package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sillystar/blog/internal/db"
)

func loginSession(t *testing.T, r http.Handler, username, password string) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected login redirect, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func TestAdminRequiresLogin(t *testing.T) {
	r, _, _ := setupHandlerTest(t)

	w := getPage(t, r, "/admin/posts")
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect for anonymous admin access, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Fatalf("expected redirect to login, got %q", loc)
	}
}

func TestAdminLoginRejectsBadPassword(t *testing.T) {
	r, gdb, _ := setupHandlerTest(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := gdb.Create(&db.User{Username: "root", Password: string(hashed)}).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	w := postForm(t, r, "/admin/login", url.Values{
		"username": {"root"},
		"password": {"wrong"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", w.Code)
	}
}

func TestAdminLoginAndPostListFlow(t *testing.T) {
	r, gdb, _ := setupHandlerTest(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := gdb.Create(&db.User{Username: "root", Password: string(hashed)}).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	seedPost(t, gdb, "Admin Visible Draft", "admin-visible-draft", db.StatusDraft, time.Now().UTC())

	cookies := loginSession(t, r, "root", "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated admin, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Admin Visible Draft") {
		t.Fatalf("expected draft post on the admin list")
	}
}

func TestAdminCreateAndPublishPost(t *testing.T) {
	r, gdb, _ := setupHandlerTest(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := gdb.Create(&db.User{Username: "root", Password: string(hashed)}).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	cookies := loginSession(t, r, "root", "secret")

	w := httptest.NewRecorder()
	form := url.Values{
		"title": {"Fresh Post"},
		"body":  {"Some body text"},
		"tags":  {"Go, Web"},
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/posts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after create, got %d: %s", w.Code, w.Body.String())
	}

	var post db.Post
	if err := gdb.Preload("Tags").Where("slug = ?", "fresh-post").First(&post).Error; err != nil {
		t.Fatalf("load created post: %v", err)
	}
	if post.Status != db.StatusDraft {
		t.Fatalf("new admin posts must start as drafts, got %q", post.Status)
	}
	if len(post.Tags) != 2 {
		t.Fatalf("expected 2 tags on created post, got %d", len(post.Tags))
	}

	// Publish the draft through the admin action.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/admin/posts/"+uitoa(post.ID)+"/publish", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after publish, got %d", w.Code)
	}

	if err := gdb.First(&post, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.Status != db.StatusPublished {
		t.Fatalf("expected published status after publish action, got %q", post.Status)
	}
}

func TestAdminToggleCommentVisibility(t *testing.T) {
	r, gdb, _ := setupHandlerTest(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := gdb.Create(&db.User{Username: "root", Password: string(hashed)}).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	post := seedPost(t, gdb, "Commented", "commented", db.StatusPublished, time.Now().UTC())
	comment := db.Comment{Name: "A", Email: "a@example.com", Body: "spam", Active: true, PostID: post.ID}
	if err := gdb.Create(&comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}

	cookies := loginSession(t, r, "root", "secret")

	w := httptest.NewRecorder()
	form := url.Values{"active": {"false"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/comments/"+uitoa(comment.ID)+"/toggle", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after toggle, got %d", w.Code)
	}

	if err := gdb.First(&comment, comment.ID).Error; err != nil {
		t.Fatalf("reload comment: %v", err)
	}
	if comment.Active {
		t.Fatalf("expected comment deactivated")
	}
}

func uitoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
