package weatherservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// KeyValueStore команды redis, которые использует кэш
type KeyValueStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache кэш прогнозов в redis
type RedisCache struct {
	store KeyValueStore
}

// NewRedisCache создает кэш поверх redis клиента
func NewRedisCache(store KeyValueStore) *RedisCache {
	return &RedisCache{store: store}
}

// Get возвращает прогноз из кэша. Отсутствие ключа не является ошибкой
func (c *RedisCache) Get(ctx context.Context, key string) (domain.Forecast, bool, error) {
	raw, err := c.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Forecast{}, false, nil
	}
	if err != nil {
		return domain.Forecast{}, false, fmt.Errorf("%w: get %s: %v", ErrCache, key, err)
	}

	var cached cachedForecast
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.Forecast{}, false, fmt.Errorf("%w: decode %s: %v", ErrCache, key, err)
	}

	return cached.toDomain(), true, nil
}

// Set сохраняет прогноз на ttl
func (c *RedisCache) Set(ctx context.Context, key string, forecast domain.Forecast, ttl time.Duration) error {
	raw, err := json.Marshal(toCached(forecast))
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrCache, key, err)
	}

	if err := c.store.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrCache, key, err)
	}
	return nil
}
