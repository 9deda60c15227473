package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore tracks which detail URLs were scraped recently, so repeated
// runs inside the dedup window do not refetch pages whose courts are
// already stored.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MarkScraped sets a key with a TTL to prevent re-scraping the URL.
func (s *RedisStore) MarkScraped(ctx context.Context, url string) error {
	key := fmt.Sprintf("scraped:%s", url)
	return s.client.Set(ctx, key, "1", s.ttl).Err()
}

// IsRecentlyScraped checks if a URL was scraped within the TTL.
func (s *RedisStore) IsRecentlyScraped(ctx context.Context, url string) (bool, error) {
	key := fmt.Sprintf("scraped:%s", url)
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
