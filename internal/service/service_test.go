package service

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sillystar/blog/internal/db"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Post{}, &db.Comment{}, &db.Tag{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB) db.User {
	t.Helper()

	user := db.User{Username: "author", Password: "hashed"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// seedPost inserts a post directly, bypassing the service layer, so
// tests control status and publish date exactly.
func seedPost(t *testing.T, gdb *gorm.DB, title, slugValue, status string, publishedAt time.Time, tags ...db.Tag) db.Post {
	t.Helper()

	post := db.Post{
		Title:       title,
		Slug:        slugValue,
		Body:        "body of " + title,
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
