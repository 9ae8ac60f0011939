package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/sillystar/blog/internal/db"
	"github.com/sillystar/blog/internal/service"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Sign in",
	})
}

// Login 处理用户登录请求
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user db.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "Invalid username or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "Invalid username or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": "Failed to save session"})
		return
	}

	c.Redirect(http.StatusFound, "/admin/posts")
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID == nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ShowAdminPostList renders the post management list with status
// filter and draft/published counters.
func (a *API) ShowAdminPostList(c *gin.Context) {
	status := c.Query("status")
	if status != db.StatusDraft && status != db.StatusPublished {
		status = ""
	}
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)

	listing, err := a.posts.List(status, page, 10)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "admin_posts.html", gin.H{
		"posts":          listing.Posts,
		"status":         status,
		"page":           listing.Page,
		"totalPages":     listing.TotalPages,
		"publishedCount": listing.PublishedCount,
		"draftCount":     listing.DraftCount,
		"username":       sessions.Default(c).Get("username"),
	})
}

// ShowPostEdit renders the post form, empty for /new or populated for
// /:id/edit.
func (a *API) ShowPostEdit(c *gin.Context) {
	data := gin.H{"post": nil, "tagNames": ""}

	if raw := c.Param("id"); raw != "" {
		id, err := parseUintParam(c, "id")
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		post, err := a.posts.Get(id)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		names := make([]string, 0, len(post.Tags))
		for _, tag := range post.Tags {
			names = append(names, tag.Name)
		}
		data["post"] = post
		data["tagNames"] = strings.Join(names, ", ")
	}

	c.HTML(http.StatusOK, "admin_post_edit.html", data)
}

// SavePost creates or updates a post from the admin form.
func (a *API) SavePost(c *gin.Context) {
	session := sessions.Default(c)
	userID, _ := session.Get("user_id").(uint)

	input := service.PostInput{
		Title:    c.PostForm("title"),
		Body:     c.PostForm("body"),
		TagNames: splitTagNames(c.PostForm("tags")),
		UserID:   userID,
	}

	if raw := strings.TrimSpace(c.PostForm("published_at")); raw != "" {
		if parsed, err := parsePublishTime(raw); err == nil {
			input.PublishedAt = &parsed
		}
	}

	var (
		post *db.Post
		err  error
	)
	if raw := c.Param("id"); raw != "" {
		var id uint
		if id, err = parseUintParam(c, "id"); err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		post, err = a.posts.Update(id, input)
	} else {
		post, err = a.posts.Create(input)
	}

	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrPostNotFound) {
			status = http.StatusNotFound
		}
		c.HTML(status, "admin_post_edit.html", gin.H{
			"post":     post,
			"tagNames": c.PostForm("tags"),
			"error":    err.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/posts")
}

// PublishPost moves a draft to published, the only status transition.
func (a *API) PublishPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if _, err := a.posts.Publish(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Redirect(http.StatusFound, "/admin/posts")
		return
	}

	c.Redirect(http.StatusFound, "/admin/posts")
}

// DeletePost removes a post and its comments.
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if err := a.posts.Delete(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, "/admin/posts")
}

// ShowCommentList renders recent comments for moderation.
func (a *API) ShowCommentList(c *gin.Context) {
	rows, err := a.comments.ListRecent(50)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "admin_comments.html", gin.H{
		"comments": rows,
	})
}

// ToggleComment flips a comment's active flag.
func (a *API) ToggleComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	active := c.PostForm("active") == "true"
	if err := a.comments.SetActive(id, active); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, "/admin/comments")
}

func splitTagNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

func parsePublishTime(raw string) (time.Time, error) {
	layouts := []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized publish time")
}
