package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr           string
	Port                 string
	DatabaseDriver       string
	DatabaseDSN          string
	SessionSecret        string
	JWTSecret            string
	JWTTTL               time.Duration
	GinMode              string
	LogLevel             string
	UploadDir            string
	UploadURLPath        string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	CacheTTL             time.Duration
	CommentRatePerMinute int
	SuperRootUserName    string
	SuperRootPassword    string
	SiteBaseURL          string
	TrustedProxies       []string
}

const (
	releaseMode      = "release"
	devSessionSecret = "tourcms-dev-secret"
	devJWTSecret     = "tourcms-dev-jwt-secret"
)

// ErrInsecureSecret 表示 release 模式下仍在使用空的或内置的开发密钥。
var ErrInsecureSecret = errors.New("session_secret and jwt_secret must be set to non-default values in release mode")

var defaults = map[string]any{
	"port":                    "8080",
	"database_driver":         "sqlite",
	"database_dsn":            "tourcms.db",
	"session_secret":          devSessionSecret,
	"jwt_secret":              devJWTSecret,
	"jwt_ttl":                 "72h",
	"gin_mode":                "release",
	"log_level":               "info",
	"upload_dir":              "web/static/uploads",
	"upload_url_path":         "/static/uploads",
	"redis_addr":              "",
	"redis_password":          "",
	"redis_db":                0,
	"cache_ttl":               "5m",
	"comment_rate_per_minute": 3,
	"site_base_url":           "https://example.travel",
	"trusted_proxies":         "",
}

// Load 从环境变量与可选的配置文件读取应用配置，并为缺失项提供默认值。
// configFile 为空时会尝试在当前目录查找 tourcms.yaml。
func Load(configFile string) (AppConfig, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path := strings.TrimSpace(configFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("tourcms")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return AppConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := AppConfig{
		Port:                 strings.TrimSpace(v.GetString("port")),
		ListenAddr:           strings.TrimSpace(v.GetString("listen_addr")),
		DatabaseDriver:       strings.ToLower(strings.TrimSpace(v.GetString("database_driver"))),
		DatabaseDSN:          strings.TrimSpace(v.GetString("database_dsn")),
		SessionSecret:        strings.TrimSpace(v.GetString("session_secret")),
		JWTSecret:            strings.TrimSpace(v.GetString("jwt_secret")),
		JWTTTL:               v.GetDuration("jwt_ttl"),
		GinMode:              strings.TrimSpace(v.GetString("gin_mode")),
		LogLevel:             strings.TrimSpace(v.GetString("log_level")),
		UploadDir:            strings.TrimSpace(v.GetString("upload_dir")),
		UploadURLPath:        strings.TrimSpace(v.GetString("upload_url_path")),
		RedisAddr:            strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:        v.GetString("redis_password"),
		RedisDB:              v.GetInt("redis_db"),
		CacheTTL:             v.GetDuration("cache_ttl"),
		CommentRatePerMinute: v.GetInt("comment_rate_per_minute"),
		SuperRootUserName:    strings.TrimSpace(v.GetString("super_root_user_name")),
		SuperRootPassword:    strings.TrimSpace(v.GetString("super_root_password")),
		SiteBaseURL:          strings.TrimRight(strings.TrimSpace(v.GetString("site_base_url")), "/"),
		TrustedProxies:       splitList(v.GetString("trusted_proxies")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return AppConfig{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if strings.EqualFold(cfg.GinMode, releaseMode) {
		if insecureSecret(cfg.SessionSecret, devSessionSecret) || insecureSecret(cfg.JWTSecret, devJWTSecret) {
			return AppConfig{}, ErrInsecureSecret
		}
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 72 * time.Hour
	}
	if cfg.CacheTTL < 0 {
		cfg.CacheTTL = 0
	}
	if cfg.CommentRatePerMinute <= 0 {
		cfg.CommentRatePerMinute = 3
	}

	return cfg, nil
}

func insecureSecret(value, builtin string) bool {
	return value == "" || value == builtin
}

// splitList 解析逗号分隔的配置项，忽略空白项。
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
