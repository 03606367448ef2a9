// Package mongodb opens the MongoDB user store.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// ErrURIMissing is returned when no connection string is configured.
var ErrURIMissing = errors.New("MongoDB URI is not defined in environment variables")

// retryInterval is the pause between ping attempts.
var retryInterval = 3 * time.Second

// Config holds the MongoDB connection settings.
type Config struct {
	URI      string
	Database string
	// ConnectTimeout bounds the startup ping loop. Zero means 60 seconds.
	ConnectTimeout time.Duration
}

// Pinger checks that a server is reachable.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Connect creates a client and waits until the primary answers a ping.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, ErrURIMissing
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if err := PingWithRetry(ctx, client, timeout); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	zap.L().Info("connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

// PingWithRetry pings p until it answers or timeout elapses.
func PingWithRetry(ctx context.Context, p Pinger, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("mongo connect failed after %s: %w", timeout, err)
		}
		zap.L().Warn("mongo ping failed, retrying", zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
