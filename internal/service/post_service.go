package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/sillystar/blog/internal/db"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrSlugTaken      = errors.New("slug already used on this publish date")
	ErrTitleRequired  = errors.New("post title is required")
	ErrBodyRequired   = errors.New("post body is required")
	ErrAlreadyPublish = errors.New("post is already published")
)

// DefaultPageSize is the public listing page size.
const DefaultPageSize = 3

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostPage aggregates one page of the public listing.
type PostPage struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PostListResult aggregates admin list data and status counters.
type PostListResult struct {
	Posts          []db.Post
	Total          int64
	PublishedCount int64
	DraftCount     int64
	TotalPages     int
	Page           int
	PerPage        int
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title       string
	Body        string
	TagNames    []string
	UserID      uint
	PublishedAt *time.Time
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// All returns a queryset over every post, newest publish date first.
func (s *PostService) All() *gorm.DB {
	return s.db.Model(&db.Post{}).Order("posts.published_at desc, posts.id desc")
}

// Published returns the same queryset restricted to published posts.
// All and Published are the two named entry points over one record set.
func (s *PostService) Published() *gorm.DB {
	return s.All().Where("posts.status = ?", db.StatusPublished)
}

// ListPublished returns one page of published posts, optionally
// restricted to a tag slug. Page numbers below 1 serve the first page,
// numbers beyond the end serve the last page.
func (s *PostService) ListPublished(tagSlug string, page, perPage int) (*PostPage, error) {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	result := &PostPage{PerPage: perPage}

	countQuery := s.applyPublicFilters(s.db.Model(&db.Post{}), tagSlug)
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	result.TotalPages = int((result.Total + int64(perPage) - 1) / int64(perPage))
	if result.TotalPages < 1 {
		result.TotalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > result.TotalPages {
		page = result.TotalPages
	}
	result.Page = page

	var posts []db.Post
	dataQuery := s.applyPublicFilters(s.db.Model(&db.Post{}).Preload("Tags").Preload("User"), tagSlug)
	if err := dataQuery.
		Order("posts.published_at desc, posts.id desc").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	result.Posts = posts
	return result, nil
}

// GetPublished fetches the single published post matching the
// date-based permalink. Draft posts never match, whatever the slug.
func (s *PostService) GetPublished(year, month, day int, slugValue string) (*db.Post, error) {
	publishDay := fmt.Sprintf("%04d-%02d-%02d", year, month, day)

	var post db.Post
	if err := s.db.Preload("Tags").Preload("User").
		Where("slug = ? AND publish_day = ? AND status = ?", slugValue, publishDay, db.StatusPublished).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPublishedByID fetches a published post by primary key.
func (s *PostService) GetPublishedByID(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Preload("User").
		Where("id = ? AND status = ?", id, db.StatusPublished).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Get fetches any post by primary key for the admin screens.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// SimilarPosts returns published posts sharing at least one tag with
// the given post, ranked by shared-tag count then publish recency,
// excluding the post itself.
func (s *PostService) SimilarPosts(post *db.Post, limit int) ([]db.Post, error) {
	if limit <= 0 {
		limit = 4
	}

	tagIDs := make([]uint, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	if len(tagIDs) == 0 {
		return []db.Post{}, nil
	}

	var posts []db.Post
	if err := s.db.Model(&db.Post{}).
		Select("posts.*, COUNT(post_tags.tag_id) AS same_tags").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id IN ?", tagIDs).
		Where("posts.id <> ?", post.ID).
		Where("posts.status = ?", db.StatusPublished).
		Group("posts.id").
		Order("same_tags desc").
		Order("posts.published_at desc").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// AllPublished returns every published post, newest first.
func (s *PostService) AllPublished() ([]db.Post, error) {
	var posts []db.Post
	if err := s.Published().Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// List provides paginated posts with status counters for the admin.
func (s *PostService) List(status string, page, perPage int) (*PostListResult, error) {
	result := &PostListResult{Page: page, PerPage: perPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 10
	}

	countQuery := s.db.Model(&db.Post{})
	if status != "" {
		countQuery = countQuery.Where("posts.status = ?", status)
	}
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.Post{}).Where("posts.status = ?", db.StatusPublished).
		Count(&result.PublishedCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.Post{}).Where("posts.status = ?", db.StatusDraft).
		Count(&result.DraftCount).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	dataQuery := s.db.Model(&db.Post{}).Preload("Tags").Preload("User")
	if status != "" {
		dataQuery = dataQuery.Where("posts.status = ?", status)
	}

	var posts []db.Post
	if err := dataQuery.
		Order("posts.created_at desc, posts.id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Posts = posts
	return result, nil
}

// Create persists a draft post and associates tags in a transaction.
// The slug is derived from the title and checked against the per-date
// uniqueness rule before insert.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, ErrBodyRequired
	}

	publishedAt := time.Now().UTC()
	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		publishedAt = input.PublishedAt.UTC()
	}

	post := db.Post{
		Title:       title,
		Slug:        slug.Make(title),
		Body:        input.Body,
		PublishedAt: publishedAt,
		Status:      db.StatusDraft,
		UserID:      input.UserID,
	}

	if err := s.checkSlugFree(post.Slug, publishedAt, 0); err != nil {
		return nil, err
	}

	return s.saveWithTags(&post, input.TagNames)
}

// Update applies updates to an existing post. A changed title derives
// a fresh slug, re-validated against the publish date.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, ErrBodyRequired
	}

	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		existing.PublishedAt = input.PublishedAt.UTC()
	}

	newSlug := slug.Make(title)
	if newSlug != existing.Slug || existing.PublishDay != existing.PublishedAt.UTC().Format("2006-01-02") {
		if err := s.checkSlugFree(newSlug, existing.PublishedAt, existing.ID); err != nil {
			return nil, err
		}
	}

	existing.Title = title
	existing.Slug = newSlug
	existing.Body = input.Body

	return s.saveWithTags(&existing, input.TagNames)
}

// Publish moves a draft to the published status. This is the only
// meaningful state transition a post goes through.
func (s *PostService) Publish(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.Status == db.StatusPublished {
		return nil, ErrAlreadyPublish
	}

	if err := s.db.Model(&db.Post{}).
		Where("id = ?", post.ID).
		Update("status", db.StatusPublished).Error; err != nil {
		return nil, err
	}

	return s.Get(post.ID)
}

// Delete removes a post; its comments cascade away with it.
func (s *PostService) Delete(id uint) error {
	result := s.db.Select("Comments").Delete(&db.Post{Model: gorm.Model{ID: id}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *PostService) applyPublicFilters(query *gorm.DB, tagSlug string) *gorm.DB {
	query = query.Where("posts.status = ?", db.StatusPublished)

	if tagSlug != "" {
		subQuery := s.db.Model(&db.Tag{}).
			Select("post_tags.post_id").
			Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
			Where("tags.slug = ?", tagSlug)

		query = query.Where("posts.id IN (?)", subQuery)
	}

	return query
}

func (s *PostService) checkSlugFree(slugValue string, publishedAt time.Time, excludeID uint) error {
	publishDay := publishedAt.UTC().Format("2006-01-02")

	var count int64
	query := s.db.Model(&db.Post{}).
		Where("slug = ? AND publish_day = ?", slugValue, publishDay)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

func (s *PostService) saveWithTags(post *db.Post, tagNames []string) (*db.Post, error) {
	return post, s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}

		tags, err := ensureTags(tx, tagNames)
		if err != nil {
			return err
		}

		if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
			return err
		}

		return tx.Preload("Tags").First(post, post.ID).Error
	})
}

// ensureTags resolves tag names to rows, creating missing ones.
func ensureTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	tags := make([]db.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		slugValue := slug.Make(name)
		if _, ok := seen[slugValue]; ok {
			continue
		}
		seen[slugValue] = struct{}{}

		var tag db.Tag
		err := tx.Where("slug = ?", slugValue).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = db.Tag{Name: name, Slug: slugValue}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}

		tags = append(tags, tag)
	}

	return tags, nil
}
