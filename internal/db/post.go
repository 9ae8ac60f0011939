package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Post status values. Draft posts are invisible outside the admin.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post 定义了文章模型。Slug 在同一发布日期内唯一，而不是全局唯一。
type Post struct {
	gorm.Model
	Title       string `gorm:"size:250;not null"`
	Slug        string `gorm:"size:250;not null;uniqueIndex:idx_posts_slug_publish_day"`
	PublishDay  string `gorm:"size:10;not null;uniqueIndex:idx_posts_slug_publish_day"`
	Body        string `gorm:"type:text;not null"`
	PublishedAt time.Time
	Status      string `gorm:"size:10;not null;default:draft"`
	UserID      uint
	User        User
	Tags        []Tag     `gorm:"many2many:post_tags;"`
	Comments    []Comment `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeSave defaults PublishedAt to now and keeps the derived
// publish-day column in sync so per-date slug uniqueness holds.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	p.PublishDay = p.PublishedAt.UTC().Format("2006-01-02")
	return nil
}

// URL returns the canonical date-based path for the post. Value
// receiver so templates can call it on slice elements directly.
func (p Post) URL() string {
	t := p.PublishedAt.UTC()
	return fmt.Sprintf("/%d/%d/%d/%s", t.Year(), int(t.Month()), t.Day(), p.Slug)
}
