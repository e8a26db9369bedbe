package sbapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeRedis represents Redis cache.
	CacheTypeRedis CacheType = "redis"

	// CacheTypeTiered puts a memory cache in front of Redis and/or NATS.
	CacheTypeTiered CacheType = "tiered"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrRedisConfigRequired   = errors.New("redis configuration required for Redis cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
	ErrSharedTierRequired    = errors.New("tiered cache requires a Redis or NATS configuration")
)

// CacheConfig configures the cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// Memory cache configuration, also the first tier of a tiered cache
	Memory *MemoryCacheConfig

	// NATS KV cache configuration
	NATS *NATSKVConfig

	// Redis cache configuration
	Redis *RedisConfig

	// Common options applied to any backend. If nil, DefaultCacheOptions() is used.
	Options *CacheOptions

	// Policy selects cached responses. If nil, DefaultCachingPolicy() is used.
	Policy *CachingPolicy
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int

	// CleanupInterval is how often expired entries are dropped. Zero disables
	// background cleanup.
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize: constants.DefaultCacheSize,
		},
		Options: DefaultCacheOptions(),
		Policy:  DefaultCachingPolicy(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(ctx context.Context, config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewMemoryCacheFromConfig(ctx, config.Memory), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(ctx, config.NATS)

	case CacheTypeRedis:
		if config.Redis == nil {
			return nil, ErrRedisConfigRequired
		}

		return NewRedisCache(ctx, config.Redis)

	case CacheTypeTiered:
		return newTieredCache(ctx, config)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NewMemoryCacheFromConfig creates a memory cache from configuration. When a
// cleanup interval is set, expired entries are dropped until ctx is done.
func NewMemoryCacheFromConfig(ctx context.Context, config *MemoryCacheConfig) *MemoryCache {
	if config == nil {
		config = &MemoryCacheConfig{MaxSize: constants.DefaultCacheSize}
	}

	cache := NewMemoryCache(config.MaxSize)

	if config.CleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(config.CleanupInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					cache.Cleanup()
				}
			}
		}()
	}

	return cache
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheChain layers cache backends. Reads go front to back and a hit in a
// later tier is copied into the earlier ones. Writes go to every tier.
type CacheChain struct {
	tiers []Cache
}

// NewCacheChain creates a chain with tiers in lookup order.
func NewCacheChain(tiers ...Cache) *CacheChain {
	return &CacheChain{tiers: tiers}
}

// Get returns the entry from the first tier holding key.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for depth, tier := range c.tiers {
		entry, err := tier.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, upper := range c.tiers[:depth] {
			_ = upper.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrKeyNotFoundInAnyCache, key)
}

// Set stores entry in every tier.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.each(func(tier Cache) error { return tier.Set(ctx, key, entry) })
}

// Delete removes key from every tier.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.each(func(tier Cache) error { return tier.Delete(ctx, key) })
}

// Clear empties every tier.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.each(func(tier Cache) error { return tier.Clear(ctx) })
}

// Has reports whether any tier holds key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, tier := range c.tiers {
		if tier.Has(ctx, key) {
			return true
		}
	}

	return false
}

// Tiers returns the number of layered backends.
func (c *CacheChain) Tiers() int {
	return len(c.tiers)
}

func (c *CacheChain) each(apply func(Cache) error) error {
	errs := make([]error, 0, len(c.tiers))

	for _, tier := range c.tiers {
		errs = append(errs, apply(tier))
	}

	return errors.Join(errs...)
}

// newTieredCache puts a memory cache in front of every configured shared
// backend, Redis first and NATS second.
func newTieredCache(ctx context.Context, config *CacheConfig) (*CacheChain, error) {
	tiers := []Cache{NewMemoryCacheFromConfig(ctx, config.Memory)}

	if config.Redis != nil {
		redisCache, err := NewRedisCache(ctx, config.Redis)
		if err != nil {
			return nil, fmt.Errorf("creating redis tier: %w", err)
		}

		tiers = append(tiers, redisCache)
	}

	if config.NATS != nil {
		natsCache, err := NewNATSKVCache(ctx, config.NATS)
		if err != nil {
			return nil, fmt.Errorf("creating NATS tier: %w", err)
		}

		tiers = append(tiers, natsCache)
	}

	if len(tiers) == 1 {
		return nil, ErrSharedTierRequired
	}

	return NewCacheChain(tiers...), nil
}
