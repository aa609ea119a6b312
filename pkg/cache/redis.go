// Package cache opens the optional Redis connection used for shared caching.
package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/chamada-api/pkg/config"
)

const (
	clientName     = "chamada-api"
	connectTimeout = 3 * time.Second
	commandTimeout = time.Second
)

// Addr joins host and port, bracketing IPv6 literals.
func Addr(cfg config.RedisConfig) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// NewRedis dials Redis and checks it answers. A disabled config yields a nil
// client and no error; callers then fall back to the in-process cache.
// Command timeouts stay short because a slow cache must never hold up a
// request that could be answered from the database.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         Addr(cfg),
		ClientName:   clientName,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  connectTimeout,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", Addr(cfg), err)
	}
	return client, nil
}
