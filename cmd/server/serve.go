package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"account_backend/internal/app/di"
	"account_backend/internal/app/router"
	"account_backend/internal/platform/http/handler"
	"account_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	store, err := di.OpenStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open user store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("failed to close user store", zap.Error(err))
		}
	}()
	checks := map[string]handler.Checker{"store": store.Ping}

	// Redis (optional)
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := redis.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Warn("Redis unavailable. Running without cache.", zap.Error(err))
		} else {
			rdb = tmp
			checks["redis"] = di.RedisCheck(rdb)
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error("failed to close Redis client", zap.Error(err))
				}
			}()
		}
	}

	users := di.WithUserCache(store.Users, rdb, cfg.UserCacheTTL)
	account := di.NewAccount(cfg, users, log)
	engine := router.NewRouter(account.Handler, handler.NewHealthHandler(checks), account.Tokens, router.Options{
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
