package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/tourcms/internal/auth"
	"github.com/tourcms/internal/cache"
	"github.com/tourcms/internal/config"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/handler"
	"github.com/tourcms/internal/router"
	"github.com/tourcms/internal/service"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func runServer(ctx context.Context) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer closeDB(gdb)

	if err := db.EnsureUser(gdb, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		return fmt.Errorf("ensure super root: %w", err)
	}
	if purged, err := service.NewAuthService(gdb, nil).PurgeExpiredSessions(); err != nil {
		log.Warn("purge expired sessions failed", zap.Error(err))
	} else if purged > 0 {
		log.Info("purged expired sessions", zap.Int64("count", purged))
	}

	store, closeStore, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	api := handler.NewAPI(gdb, handler.Options{
		UploadDir:            cfg.UploadDir,
		UploadURL:            cfg.UploadURLPath,
		SiteBaseURL:          cfg.SiteBaseURL,
		CommentRatePerMinute: cfg.CommentRatePerMinute,
		Cache:                store,
		Logger:               log,
		Tokens:               tokens,
	})
	engine := router.SetupRouter(api, store, log, router.Config{
		SessionSecret:  cfg.SessionSecret,
		UploadDir:      cfg.UploadDir,
		UploadURL:      cfg.UploadURLPath,
		CacheTTL:       cfg.CacheTTL,
		SecureCookie:   cfg.GinMode == gin.ReleaseMode,
		TrustedProxies: cfg.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("run server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openCache 配置了 REDIS_ADDR 时使用 redis，否则退回进程内缓存
func openCache(ctx context.Context, cfg config.AppConfig, log *zap.Logger) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("using in-memory page cache")
		return cache.NewMemory(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	log.Info("using redis page cache", zap.String("addr", cfg.RedisAddr))
	return cache.NewRedis(client, "tourcms"), func() { client.Close() }, nil
}
