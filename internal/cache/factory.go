package cache

import (
	"fmt"

	"github.com/miradorstack/mirador-rul/internal/config"
)

// NewFromConfig selects the provider described by cfg. A disabled cache yields NoopProvider.
func NewFromConfig(cfg config.CacheConfig) (Provider, error) {
	if !cfg.Enabled {
		return NoopProvider{}, nil
	}
	switch cfg.Backend {
	case config.CacheBackendMemory:
		return NewMemoryProvider(), nil
	case config.CacheBackendRedis:
		return NewRedisProvider(RedisConfig{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			MaxRetries:   cfg.MaxRetries,
			TLS:          cfg.TLS,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
