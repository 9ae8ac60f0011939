package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Search ranking modes for the public search page.
const (
	SearchModeTrigram  = "trigram"
	SearchModeFulltext = "fulltext"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DBDriver      string
	DatabaseDSN   string
	SessionSecret string
	GinMode       string
	SiteBaseURL   string
	SearchMode    string

	AdminUsername string
	AdminPassword string

	MailFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	dbDriver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if dbDriver == "" {
		dbDriver = "sqlite"
	}

	databaseDSN := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if databaseDSN == "" && dbDriver == "sqlite" {
		databaseDSN = "blog.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "sillystar-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "https://blog.sillystar.com"
	}
	siteBaseURL = strings.TrimRight(siteBaseURL, "/")

	searchMode := strings.TrimSpace(os.Getenv("SEARCH_MODE"))
	if searchMode != SearchModeFulltext {
		searchMode = SearchModeTrigram
	}

	mailFrom := strings.TrimSpace(os.Getenv("MAIL_FROM"))
	if mailFrom == "" {
		mailFrom = "admin@sillystar.com"
	}

	smtpHost := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if smtpHost == "" {
		smtpHost = "localhost"
	}

	smtpPort := 587
	if raw := strings.TrimSpace(os.Getenv("SMTP_PORT")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			smtpPort = parsed
		}
	}

	return AppConfig{
		ListenAddr:    listenAddr,
		Port:          port,
		DBDriver:      dbDriver,
		DatabaseDSN:   databaseDSN,
		SessionSecret: sessionSecret,
		GinMode:       ginMode,
		SiteBaseURL:   siteBaseURL,
		SearchMode:    searchMode,
		AdminUsername: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminPassword: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		MailFrom:      mailFrom,
		SMTPHost:      smtpHost,
		SMTPPort:      smtpPort,
		SMTPUsername:  strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:  strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
	}
}
