package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sillystar/blog/internal/db"
)

var ErrCommentNotFound = errors.New("comment not found")

// CommentService wraps comment related operations.
type CommentService struct {
	db *gorm.DB
}

// CommentInput carries the validated public comment fields.
type CommentInput struct {
	Name  string
	Email string
	Body  string
}

// ModerationRow pairs a comment with the title of its post for the
// admin moderation screen.
type ModerationRow struct {
	db.Comment `gorm:"embedded"`
	PostTitle  string
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// ActiveForPost returns the visible comments of a post, oldest first.
func (s *CommentService) ActiveForPost(postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.
		Where("post_id = ? AND active = ?", postID, true).
		Order("created_at asc, id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Create persists a visitor comment on the given post. New comments
// start out active; moderation may hide them later.
func (s *CommentService) Create(postID uint, input CommentInput) (*db.Comment, error) {
	comment := db.Comment{
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Body:   strings.TrimSpace(input.Body),
		Active: true,
		PostID: postID,
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// SetActive toggles comment visibility for moderation.
func (s *CommentService) SetActive(id uint, active bool) error {
	result := s.db.Model(&db.Comment{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListRecent 返回最新评论供后台审核列表使用
func (s *CommentService) ListRecent(limit int) ([]ModerationRow, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []ModerationRow
	if err := s.db.Model(&db.Comment{}).
		Select("comments.*, posts.title AS post_title").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Order("comments.created_at desc, comments.id desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
