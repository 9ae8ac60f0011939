package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snabb/sitemap"
)

// Sitemap writes the published-post sitemap consumed by search-engine
// crawlers: one weekly, priority 0.9 entry per post with its
// last-modified timestamp.
func (a *API) Sitemap(c *gin.Context) {
	posts, err := a.posts.AllPublished()
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	sm := sitemap.New()
	for i := range posts {
		post := &posts[i]
		lastMod := post.UpdatedAt
		sm.Add(&sitemap.URL{
			Loc:        a.baseURL + post.URL(),
			LastMod:    &lastMod,
			ChangeFreq: sitemap.Weekly,
			Priority:   0.9,
		})
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := sm.WriteTo(c.Writer); err != nil {
		c.Error(err)
	}
}
