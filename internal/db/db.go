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
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Models 返回需要自动迁移的全部模型，测试与 migrate 命令共用。
func Models() []any {
	return []any{
		&User{},
		&Session{},
		&Region{},
		&Tag{},
		&Post{},
		&Hotel{},
		&Activity{},
		&Video{},
		&Gallery{},
		&Photo{},
		&Comment{},
		&HeroSlide{},
		&ContentLink{},
		&Page{},
		&SystemSetting{},
		&ContentStatistic{},
		&ContentVisit{},
	}
}

// Open 按驱动打开数据库连接，不执行迁移。
// sqlite 的 dsn 为空时回退到默认值 tourcms.db。
func Open(driver, dsn string, silent bool) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "tourcms.db"
		}
		if !strings.HasPrefix(path, "file:") && path != ":memory:" {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		return gorm.Open(sqlite.Open(withForeignKeys(path)), cfg)
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate 为核心模型创建或更新表结构。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

// Init 初始化全局数据库连接并执行自动迁移。
func Init(driver, dsn string) error {
	gdb, err := Open(driver, dsn, false)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// withForeignKeys 通过 dsn 为连接池中的每条连接打开外键校验。
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
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
