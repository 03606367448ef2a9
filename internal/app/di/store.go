// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"gorm.io/gorm"

	"account_backend/internal/app/config"
	"account_backend/internal/feature/account/adapters"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/cache"
	"account_backend/internal/platform/db"
	"account_backend/internal/platform/http/handler"
	mongodb "account_backend/internal/platform/mongodb"
)

// Store is the opened user store with its health check and closer.
type Store struct {
	Users usecase.UserRepository
	Ping  handler.Checker
	Close func(ctx context.Context) error
}

// OpenStore connects to the store selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return openMongoStore(ctx, cfg)
	case config.StorePostgres, config.StoreSQLite:
		gdb, err := db.Open(cfg.DB)
		if err != nil {
			return nil, err
		}
		return NewGormStore(gdb), nil
	default:
		return nil, config.ErrUnknownStore
	}
}

func openMongoStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}

	repo := adapters.NewUserMongo(client.Database(cfg.Mongo.Database))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{
		Users: repo,
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		Close: client.Disconnect,
	}, nil
}

// NewGormStore wraps an opened GORM connection.
func NewGormStore(gdb *gorm.DB) *Store {
	return &Store{
		Users: adapters.NewUserGorm(gdb),
		Ping: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(context.Context) error { return db.Close(gdb) },
	}
}

// WithUserCache wraps users with the Redis cache. A nil rdb returns users unchanged.
func WithUserCache(users usecase.UserRepository, rdb *redis.Client, ttl time.Duration) usecase.UserRepository {
	if rdb == nil {
		return users
	}
	return cache.NewCachingUserRepository(rdb, ttl, users, "users")
}

// RedisCheck returns the health check of rdb.
func RedisCheck(rdb *redis.Client) handler.Checker {
	return func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
}
