package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sillystar/blog/internal/config"
	"github.com/sillystar/blog/internal/db"
	"github.com/sillystar/blog/internal/handler"
	"github.com/sillystar/blog/internal/mail"
	"github.com/sillystar/blog/internal/router"
)

func main() {
	// .env 文件仅用于本地开发，缺失时静默忽略
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureUser(gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	api := handler.NewAPI(gdb, mailer, cfg)

	// 设置并运行 Gin 服务器
	r := router.Setup(api, cfg.SessionSecret, "web/template/*.html")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
