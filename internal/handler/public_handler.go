package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/sillystar/blog/internal/db"
	"github.com/sillystar/blog/internal/service"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(mdhtml.WithHardWraps(), mdhtml.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderBody converts a post body from markdown to sanitized HTML.
func renderBody(body string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(body), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(body))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// ShowPostList renders the public listing, optionally filtered by the
// tag slug in the path. Three posts per page; bad page numbers clamp
// silently to the first or last page.
func (a *API) ShowPostList(c *gin.Context) {
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)

	var tag *db.Tag
	if tagSlug := c.Param("slug"); tagSlug != "" {
		found, err := a.tags.GetBySlug(tagSlug)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		tag = found
	}

	tagSlug := ""
	if tag != nil {
		tagSlug = tag.Slug
	}

	listing, err := a.posts.ListPublished(tagSlug, page, service.DefaultPageSize)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	tagOptions, err := a.tags.PublishedUsage()
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "list.html", gin.H{
		"posts":      listing.Posts,
		"tag":        tag,
		"page":       listing.Page,
		"totalPages": listing.TotalPages,
		"hasPrev":    listing.Page > 1,
		"hasNext":    listing.Page < listing.TotalPages,
		"tagOptions": tagOptions,
		"year":       time.Now().Year(),
	})
}

// ShowPostDetail renders a single published post addressed by its
// date-based permalink, with active comments, an empty comment form
// and up to four tag-similar posts.
func (a *API) ShowPostDetail(c *gin.Context) {
	post, ok := a.postFromPermalink(c)
	if !ok {
		return
	}
	a.renderDetail(c, post, nil, CommentForm{}, nil)
}

// SubmitComment validates a posted comment and stores it on success,
// re-rendering the detail page with field errors otherwise.
func (a *API) SubmitComment(c *gin.Context) {
	post, ok := a.postFromPermalink(c)
	if !ok {
		return
	}

	var form CommentForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderDetail(c, post, nil, form, fieldErrors(err))
		return
	}

	comment, err := a.comments.Create(post.ID, service.CommentInput{
		Name:  form.Name,
		Email: form.Email,
		Body:  form.Body,
	})
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	a.renderDetail(c, post, comment, CommentForm{}, nil)
}

// ShowShareForm renders the empty share-by-email form for a published
// post addressed by id.
func (a *API) ShowShareForm(c *gin.Context) {
	post, ok := a.publishedFromIDParam(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "share.html", gin.H{
		"post":   post,
		"form":   ShareForm{},
		"sent":   false,
		"errors": nil,
	})
}

// SubmitShare validates the share form and dispatches the
// recommendation email. A failed dispatch is reported on the page
// rather than surfacing as a server error.
func (a *API) SubmitShare(c *gin.Context) {
	post, ok := a.publishedFromIDParam(c)
	if !ok {
		return
	}

	var form ShareForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "share.html", gin.H{
			"post":   post,
			"form":   form,
			"sent":   false,
			"errors": fieldErrors(err),
		})
		return
	}

	err := a.share.Share(c.Request.Context(), post, service.ShareInput{
		Name:     form.Name,
		Email:    form.Email,
		To:       form.To,
		Comments: form.Comments,
	})
	if err != nil {
		c.HTML(http.StatusOK, "share.html", gin.H{
			"post":      post,
			"form":      form,
			"sent":      false,
			"mailError": "The email could not be sent. Please try again later.",
		})
		return
	}

	c.HTML(http.StatusOK, "share.html", gin.H{
		"post": post,
		"form": ShareForm{},
		"sent": true,
	})
}

// Search renders the search form and, when a query parameter is
// present and valid, the ranked results.
func (a *API) Search(c *gin.Context) {
	if _, present := c.GetQuery("query"); !present {
		c.HTML(http.StatusOK, "search.html", gin.H{
			"form":    SearchForm{},
			"query":   "",
			"results": nil,
		})
		return
	}

	var form SearchForm
	if err := c.ShouldBindQuery(&form); err != nil {
		c.HTML(http.StatusOK, "search.html", gin.H{
			"form":    form,
			"query":   "",
			"results": nil,
			"errors":  fieldErrors(err),
		})
		return
	}

	results, err := a.search.SearchPublished(form.Query)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "search.html", gin.H{
		"form":    form,
		"query":   form.Query,
		"results": results,
	})
}

// postFromPermalink resolves the year/month/day/slug path of a detail
// request to a published post, aborting with 404 on any mismatch.
func (a *API) postFromPermalink(c *gin.Context) (*db.Post, bool) {
	year := parsePositiveInt(c.Param("year"), 0)
	month := parsePositiveInt(c.Param("month"), 0)
	day := parsePositiveInt(c.Param("day"), 0)
	slugValue := c.Param("slug")

	if year == 0 || month < 1 || month > 12 || day < 1 || day > 31 || slugValue == "" {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}

	post, err := a.posts.GetPublished(year, month, day, slugValue)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}
	return post, true
}

func (a *API) publishedFromIDParam(c *gin.Context) (*db.Post, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}

	post, err := a.posts.GetPublishedByID(id)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}
	return post, true
}

func (a *API) renderDetail(c *gin.Context, post *db.Post, newComment *db.Comment, form CommentForm, errs map[string]string) {
	comments, err := a.comments.ActiveForPost(post.ID)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	similar, err := a.posts.SimilarPosts(post, 4)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "detail.html", gin.H{
		"post":         post,
		"body":         renderBody(post.Body),
		"comments":     comments,
		"newComment":   newComment,
		"commentForm":  form,
		"errors":       errs,
		"similarPosts": similar,
	})
}
