// Package cache günlük teşekkür kontrolü için hızlı yol.
// Yetkili kaynak her zaman store'daki günlük limit kaydıdır.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ThankedCache gönderen -> gün -> teknisyen seti
type ThankedCache interface {
	WasThanked(ctx context.Context, senderID, date, technicianID string) (bool, error)
	MarkThanked(ctx context.Context, senderID, date, technicianID string, expireAt time.Time) error
}

// setClient *redis.Client'ın kullandığımız kısmı
type setClient interface {
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	ExpireAt(ctx context.Context, key string, tm time.Time) *redis.BoolCmd
}

// RedisCache Redis set'leri üzerinde ThankedCache
type RedisCache struct {
	client setClient
	prefix string
}

// NewRedisCache yeni cache oluşturur
func NewRedisCache(client setClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "thankatech"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// NewRedisClient REDIS_URL'den client oluşturur ve bağlantıyı doğrular
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis url geçersiz: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis bağlantısı kurulamadı: %w", err)
	}
	return client, nil
}

func (c *RedisCache) key(senderID, date string) string {
	return fmt.Sprintf("%s:thanked:%s:%s", c.prefix, senderID, date)
}

// WasThanked teknisyen bugünkü sette mi
func (c *RedisCache) WasThanked(ctx context.Context, senderID, date, technicianID string) (bool, error) {
	ok, err := c.client.SIsMember(ctx, c.key(senderID, date), technicianID).Result()
	if err != nil {
		return false, fmt.Errorf("cache okunamadı: %w", err)
	}
	return ok, nil
}

// MarkThanked teknisyeni sete ekler; set gün bitince silinir
func (c *RedisCache) MarkThanked(ctx context.Context, senderID, date, technicianID string, expireAt time.Time) error {
	key := c.key(senderID, date)
	if err := c.client.SAdd(ctx, key, technicianID).Err(); err != nil {
		return fmt.Errorf("cache yazılamadı: %w", err)
	}
	if err := c.client.ExpireAt(ctx, key, expireAt).Err(); err != nil {
		return fmt.Errorf("cache süresi ayarlanamadı: %w", err)
	}
	return nil
}

// NoopCache Redis yokken kullanılır; her kontrol store'a düşer
type NoopCache struct{}

func (NoopCache) WasThanked(context.Context, string, string, string) (bool, error) { return false, nil }

func (NoopCache) MarkThanked(context.Context, string, string, string, time.Time) error { return nil }
