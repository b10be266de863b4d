package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 1 * time.Hour

// 検索結果のRedisキャッシュ。キャッシュが落ちていても検索は生かす
// （失敗はログだけ残してミス扱い）。
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCache(addr string, password string, logger *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: client, logger: logger}
}

func cacheKey(query string) string {
	return fmt.Sprintf("search:%s", query)
}

func (c *Cache) Get(ctx context.Context, query string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("search cache get failed", zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn("search cache unmarshal failed", zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, query string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("search cache marshal failed", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, cacheKey(query), raw, cacheTTL).Err(); err != nil {
		c.logger.Warn("search cache set failed", zap.Error(err))
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}
