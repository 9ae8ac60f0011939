package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sillystar/blog/internal/config"
	"github.com/sillystar/blog/internal/db"
	"github.com/sillystar/blog/internal/handler"
	"github.com/sillystar/blog/internal/mail"
	"github.com/sillystar/blog/internal/router"
)

var ginOnce sync.Once

// recordingMailer captures outbound messages instead of dialing SMTP.
type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setupHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB, *recordingMailer) {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Post{}, &db.Comment{}, &db.Tag{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := gdb.Create(&db.User{Username: "tester", Password: "hashed"}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	mailer := &recordingMailer{}
	cfg := config.AppConfig{
		SiteBaseURL: "https://blog.sillystar.com",
		MailFrom:    "admin@sillystar.com",
		SearchMode:  config.SearchModeTrigram,
	}

	api := handler.NewAPI(gdb, mailer, cfg)
	r := router.Setup(api, "test-secret", "../../web/template/*.html")

	return r, gdb, mailer
}

func seedPost(t *testing.T, gdb *gorm.DB, title, slugValue, status string, publishedAt time.Time, tags ...db.Tag) db.Post {
	t.Helper()

	post := db.Post{
		Title:       title,
		Slug:        slugValue,
		Body:        "Body of " + title,
		Status:      status,
		PublishedAt: publishedAt,
		UserID:      1,
		Tags:        tags,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}

func seedTag(t *testing.T, gdb *gorm.DB, name, slugValue string) db.Tag {
	t.Helper()

	tag := db.Tag{Name: name, Slug: slugValue}
	if err := gdb.Create(&tag).Error; err != nil {
		t.Fatalf("create tag %q: %v", name, err)
	}
	return tag
}

func getPage(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}
