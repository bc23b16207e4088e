// Package kv 提供 go-redis 客户端，供分布式限流使用（不做业务缓存）。
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Opts struct {
	Addr     string
	Password string
	DB       int
}

func New(o Opts) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// Connect New + Ping，启动时尽早失败
func Connect(ctx context.Context, o Opts) (*redis.Client, error) {
	rdb := New(o)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", o.Addr, err)
	}
	return rdb, nil
}
