package sbapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

func TestCacheFactory_Memory(t *testing.T) {
	t.Parallel()

	cache, err := sbapi.NewCacheFromConfig(context.Background(), &sbapi.CacheConfig{
		Type:   sbapi.CacheTypeMemory,
		Memory: &sbapi.MemoryCacheConfig{MaxSize: 10},
	})
	require.NoError(t, err)
	assert.IsType(t, &sbapi.MemoryCache{}, cache)
}

func TestCacheFactory_DefaultsToMemory(t *testing.T) {
	t.Parallel()

	cache, err := sbapi.NewCacheFromConfig(context.Background(), nil)
	require.NoError(t, err)
	assert.IsType(t, &sbapi.MemoryCache{}, cache)
}

func TestCacheFactory_None(t *testing.T) {
	t.Parallel()

	cache, err := sbapi.NewCacheFromConfig(context.Background(), &sbapi.CacheConfig{Type: sbapi.CacheTypeNone})
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", &sbapi.CacheEntry{Data: []byte("x")}))
	assert.False(t, cache.Has(ctx, "k"))

	_, err = cache.Get(ctx, "k")
	require.ErrorIs(t, err, sbapi.ErrCacheDisabled)
	require.NoError(t, cache.Delete(ctx, "k"))
	require.NoError(t, cache.Clear(ctx))
}

func TestCacheFactory_MissingBackendConfig(t *testing.T) {
	t.Parallel()

	_, err := sbapi.NewCacheFromConfig(context.Background(), &sbapi.CacheConfig{Type: sbapi.CacheTypeNATS})
	require.ErrorIs(t, err, sbapi.ErrNATSConfigRequired)

	_, err = sbapi.NewCacheFromConfig(context.Background(), &sbapi.CacheConfig{Type: sbapi.CacheTypeRedis})
	require.ErrorIs(t, err, sbapi.ErrRedisConfigRequired)
}

func TestCacheFactory_InvalidType(t *testing.T) {
	t.Parallel()

	cache, err := sbapi.NewCacheFromConfig(context.Background(), &sbapi.CacheConfig{Type: sbapi.CacheType("invalid")})
	require.ErrorIs(t, err, sbapi.ErrUnsupportedCacheType)
	assert.Nil(t, cache)
}

func TestCacheFactory_TieredRequiresSharedTier(t *testing.T) {
	t.Parallel()

	cache, err := sbapi.NewCacheFromConfig(context.Background(), &sbapi.CacheConfig{
		Type:   sbapi.CacheTypeTiered,
		Memory: &sbapi.MemoryCacheConfig{MaxSize: 10},
	})
	require.ErrorIs(t, err, sbapi.ErrSharedTierRequired)
	assert.Nil(t, cache)
}

func TestCacheFactory_TieredUnreachableRedis(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cache, err := sbapi.NewCacheFromConfig(ctx, &sbapi.CacheConfig{
		Type:  sbapi.CacheTypeTiered,
		Redis: &sbapi.RedisConfig{Addr: "127.0.0.1:1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating redis tier")
	assert.Nil(t, cache)
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	l1Cache := sbapi.NewMemoryCache(10)
	l2Cache := sbapi.NewMemoryCache(100)
	chain := sbapi.NewCacheChain(l1Cache, l2Cache)

	ctx := context.Background()
	entry := &sbapi.CacheEntry{Data: []byte("chain test"), ExpiresAt: time.Now().Add(time.Hour)}

	assert.Equal(t, 2, chain.Tiers())

	require.NoError(t, chain.Set(ctx, "chain-key", entry))
	assert.True(t, l1Cache.Has(ctx, "chain-key"))
	assert.True(t, l2Cache.Has(ctx, "chain-key"))

	require.NoError(t, l1Cache.Delete(ctx, "chain-key"))

	retrieved, err := chain.Get(ctx, "chain-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.True(t, l1Cache.Has(ctx, "chain-key"), "L1 is repopulated from L2")

	require.NoError(t, chain.Delete(ctx, "chain-key"))
	assert.False(t, chain.Has(ctx, "chain-key"))

	_, err = chain.Get(ctx, "chain-key")
	require.ErrorIs(t, err, sbapi.ErrKeyNotFoundInAnyCache)

	require.NoError(t, chain.Clear(ctx))
}

func TestDefaultCacheConfig(t *testing.T) {
	t.Parallel()

	config := sbapi.DefaultCacheConfig()
	assert.Equal(t, sbapi.CacheTypeMemory, config.Type)
	require.NotNil(t, config.Memory)
	assert.Equal(t, 1000, config.Memory.MaxSize)
	assert.NotNil(t, config.Options)
	assert.NotNil(t, config.Policy)
}
