package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tourcms/internal/config"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configFile string

// rootCmd 是所有子命令的入口
var rootCmd = &cobra.Command{
	Use:           "tourcms",
	Short:         "Tourism CMS backend: public site API and dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./tourcms.yaml)")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userPurgeSessionsCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap 读取配置、创建日志并打开数据库（含自动迁移）
func bootstrap() (config.AppConfig, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN); err != nil {
		return cfg, log, nil, fmt.Errorf("init database: %w", err)
	}
	return cfg, log, db.DB, nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}
