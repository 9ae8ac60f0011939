package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sillystar/blog/internal/db"
)

var ErrTagNotFound = errors.New("tag not found")

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// TagUsage 描述标签在已发布文章中的使用次数
type TagUsage struct {
	ID    uint
	Name  string
	Slug  string
	Count int64
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// GetBySlug returns the tag with the given slug.
func (s *TagService) GetBySlug(slugValue string) (*db.Tag, error) {
	var tag db.Tag
	if err := s.db.Where("slug = ?", slugValue).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// List returns every tag ordered by name.
func (s *TagService) List() ([]db.Tag, error) {
	var tags []db.Tag
	if err := s.db.Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// PublishedUsage 返回已发布文章中标签的使用统计
func (s *TagService) PublishedUsage() ([]TagUsage, error) {
	var rows []TagUsage

	query := s.db.Table("tags").
		Select("tags.id, tags.name, tags.slug, COUNT(DISTINCT posts.id) AS count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id").
		Where("posts.status = ?", db.StatusPublished).
		Where("posts.deleted_at IS NULL").
		Where("tags.deleted_at IS NULL").
		Group("tags.id, tags.name, tags.slug").
		Order("count desc").
		Order("tags.name asc")

	if err := query.Scan(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []TagUsage{}, nil
		}
		return nil, err
	}

	return rows, nil
}
