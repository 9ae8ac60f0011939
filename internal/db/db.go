package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Drivers accepted by Init.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Init 初始化数据库连接并执行自动迁移。
// sqlite 驱动下 dsn 为空时将回退到默认值 blog.db。
func Init(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.TrimSpace(driver) {
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "blog.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(path)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if gdb.Dialector.Name() == DriverPostgres {
		// pg_trgm must exist before the trigram index below is created.
		if err := gdb.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
			return nil, err
		}
	}

	// 自动迁移模式，为核心模型创建表
	if err := gdb.AutoMigrate(
		&User{},
		&Post{},
		&Comment{},
		&Tag{},
	); err != nil {
		return nil, err
	}

	if gdb.Dialector.Name() == DriverPostgres {
		if err := gdb.Exec(
			"CREATE INDEX IF NOT EXISTS idx_posts_title_trgm ON posts USING gin (title gin_trgm_ops)",
		).Error; err != nil {
			return nil, err
		}
	}

	return gdb, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
