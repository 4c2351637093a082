package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "luxedropship:"

// Redis хранит пары ключ-значение в Redis под общим префиксом.
type Redis struct {
	client *redis.Client
}

// NewRedis подключается к Redis и проверяет соединение.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// Get возвращает значение ключа.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get key %s: %w", key, err)
	}
	return v, true, nil
}

// Set сохраняет значение ключа без срока жизни.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("remove key %s: %w", key, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (r *Redis) Close() error {
	return r.client.Close()
}
