package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/identity-mock/internal/config"
)

// Cache хранилище сессии поверх redis. Все ключи одной сессии лежат
// в пространстве имён namespace, поэтому разные сессии не пересекаются.
type Cache struct {
	Db        *redis.Client
	namespace string
	ttl       time.Duration
}

// InitServer подключается к redis и проверяет соединение.
// namespace обычно имеет вид "<prefix><session-id>:", ttl = 0 означает хранение без срока.
func InitServer(ctx context.Context, cfg config.RedisConnection, namespace string, ttl time.Duration) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, namespace: namespace, ttl: ttl}, nil
}

func (c *Cache) key(k string) string {
	return c.namespace + k
}

// Get возвращает значение по ключу. Отсутствие ключа не является ошибкой.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

// Set сохраняет значение по ключу.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	const op = "cache.Set"
	if err := c.Db.Set(ctx, c.key(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete удаляет ключ.
func (c *Cache) Delete(ctx context.Context, key string) error {
	const op = "cache.Delete"
	if err := c.Db.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear удаляет все ключи своей сессии, ключи других сессий не затрагиваются.
func (c *Cache) Clear(ctx context.Context) error {
	const op = "cache.Clear"
	iter := c.Db.Scan(ctx, 0, c.namespace+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.Db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping проверяет доступность redis.
func (c *Cache) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx).Err()
}

// Close закрывает соединение с redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}
