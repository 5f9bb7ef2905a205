package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is the key/value cache used for derived dashboard data.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)

	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) bool

	// Clear removes every key owned by this cache.
	Clear(ctx context.Context) error

	// Increment adds value to an integer key, creating it when missing.
	Increment(ctx context.Context, key string, value int64) (int64, error)

	Close() error
}

type Config struct {
	// "gocache" (default) or "redis"
	Type string `json:"type" yaml:"type" env:"CACHE_TYPE" default:"gocache"`

	Redis RedisConfig `json:"redis" yaml:"redis"`

	Local LocalConfig `json:"local" yaml:"local"`
}

type RedisConfig struct {
	Addr string `json:"addr" yaml:"addr" env:"REDIS_ADDR" default:"localhost:6379"`

	Password string `json:"password" yaml:"password" env:"REDIS_PASSWORD"`

	DB int `json:"db" yaml:"db" env:"REDIS_DB" default:"0"`

	PoolSize int `json:"pool_size" yaml:"pool_size" env:"REDIS_POOL_SIZE" default:"10"`

	// KeyPrefix namespaces keys so Clear never touches foreign data.
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix" env:"REDIS_KEY_PREFIX" default:"securo:"`

	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" default:"5s"`
}

type LocalConfig struct {
	DefaultExpiration time.Duration `json:"default_expiration" yaml:"default_expiration" env:"LOCAL_CACHE_DEFAULT_EXPIRATION" default:"5m"`

	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" env:"LOCAL_CACHE_CLEANUP_INTERVAL" default:"10m"`
}

// SetJSON stores v as a JSON document so that every backend hands back the
// same shape regardless of how it serialises values.
func SetJSON(ctx context.Context, c Cache, key string, v interface{}, expiration time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.Set(ctx, key, string(b), expiration)
}

// GetJSON loads a value written by SetJSON into out. It reports false on a
// miss or when the stored value is not a JSON document.
func GetJSON(ctx context.Context, c Cache, key string, out interface{}) bool {
	v, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(s), out) == nil
}
