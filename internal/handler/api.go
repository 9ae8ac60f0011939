package handler

import (
	"gorm.io/gorm"

	"github.com/sillystar/blog/internal/config"
	"github.com/sillystar/blog/internal/mail"
	"github.com/sillystar/blog/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	comments *service.CommentService
	tags     *service.TagService
	search   *service.SearchService
	share    *service.ShareService
	baseURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, mailer mail.Mailer, cfg config.AppConfig) *API {
	return &API{
		db:       gdb,
		posts:    service.NewPostService(gdb),
		comments: service.NewCommentService(gdb),
		tags:     service.NewTagService(gdb),
		search:   service.NewSearchService(gdb, cfg.SearchMode),
		share:    service.NewShareService(mailer, cfg.MailFrom, cfg.SiteBaseURL),
		baseURL:  cfg.SiteBaseURL,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
