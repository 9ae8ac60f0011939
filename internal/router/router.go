package router

import (
	"html/template"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/sillystar/blog/internal/handler"
)

// Setup 配置 Gin 引擎和路由
func Setup(api *handler.API, sessionSecret, templateGlob string) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("sillystar_session", store))
	r.Use(handler.RequestID())

	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
	})
	r.LoadHTMLGlob(templateGlob)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 公共页面路由
	r.GET("/", api.ShowPostList)
	r.GET("/tag/:slug", api.ShowPostList)
	r.GET("/search", api.Search)
	r.GET("/sitemap.xml", api.Sitemap)
	r.GET("/posts/:id/share", api.ShowShareForm)
	r.POST("/posts/:id/share", api.SubmitShare)
	r.GET("/:year/:month/:day/:slug", api.ShowPostDetail)
	r.POST("/:year/:month/:day/:slug", api.SubmitComment)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/posts", api.ShowAdminPostList)
			auth.GET("/posts/new", api.ShowPostEdit)
			auth.POST("/posts", api.SavePost)
			auth.GET("/posts/:id/edit", api.ShowPostEdit)
			auth.POST("/posts/:id", api.SavePost)
			auth.POST("/posts/:id/publish", api.PublishPost)
			auth.POST("/posts/:id/delete", api.DeletePost)

			auth.GET("/comments", api.ShowCommentList)
			auth.POST("/comments/:id/toggle", api.ToggleComment)
		}
	}

	return r
}
