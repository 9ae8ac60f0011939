package service

import (
	"strings"

	"gorm.io/gorm"

	"github.com/sillystar/blog/internal/db"
)

// Search ranking modes. Trigram is the default; fulltext is the
// weighted tsvector alternative selectable through configuration.
const (
	SearchModeTrigram  = "trigram"
	SearchModeFulltext = "fulltext"
)

// Ranking thresholds below which a post is dropped from the results.
const (
	trigramThreshold  = 0.1
	fulltextThreshold = 0.3
)

const fulltextVector = "setweight(to_tsvector('english', posts.title), 'A') || " +
	"setweight(to_tsvector('english', posts.body), 'B')"

// SearchService ranks published posts against a free-text query.
type SearchService struct {
	db   *gorm.DB
	mode string
}

// NewSearchService creates a SearchService using the given ranking mode.
func NewSearchService(gdb *gorm.DB, mode string) *SearchService {
	if mode != SearchModeFulltext {
		mode = SearchModeTrigram
	}
	return &SearchService{db: gdb, mode: mode}
}

// SearchPublished returns published posts matching the query, best
// match first. On postgres the configured ranking mode applies:
// trigram similarity on the title (> 0.1), or weighted full-text rank
// over title and body (>= 0.3). Other dialects lack both extensions
// and fall back to a case-insensitive title containment match so
// development builds still search.
func (s *SearchService) SearchPublished(query string) ([]db.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []db.Post{}, nil
	}

	base := s.db.Model(&db.Post{}).Where("posts.status = ?", db.StatusPublished)
	var posts []db.Post

	if s.db.Dialector.Name() != db.DriverPostgres {
		like := "%" + strings.ToLower(query) + "%"
		if err := base.
			Where("LOWER(posts.title) LIKE ?", like).
			Order("posts.published_at desc, posts.id desc").
			Find(&posts).Error; err != nil {
			return nil, err
		}
		return posts, nil
	}

	if s.mode == SearchModeFulltext {
		rankExpr := "ts_rank(" + fulltextVector + ", plainto_tsquery('english', ?))"
		if err := base.
			Select("posts.*, "+rankExpr+" AS rank", query).
			Where(rankExpr+" >= ?", query, fulltextThreshold).
			Order("rank desc").
			Find(&posts).Error; err != nil {
			return nil, err
		}
		return posts, nil
	}

	if err := base.
		Select("posts.*, similarity(posts.title, ?) AS similarity", query).
		Where("similarity(posts.title, ?) > ?", query, trigramThreshold).
		Order("similarity desc").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
