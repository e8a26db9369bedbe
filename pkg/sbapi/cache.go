package sbapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrEntryExpired  = errors.New("entry expired")
	ErrValueTooLarge = errors.New("value exceeds maximum cache size")
)

// CacheEntry is a cached response.
type CacheEntry struct {
	Data       []byte      `json:"data"`
	StatusCode int         `json:"status_code,omitempty"`
	Headers    http.Header `json:"headers,omitempty"`
	ETag       string      `json:"etag,omitempty"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Cache is a response cache backend.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheOptions are backend independent cache settings.
type CacheOptions struct {
	TTL         time.Duration
	MaxSize     int
	EnableETags bool
}

// DefaultCacheOptions returns default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		TTL:         constants.DefaultCacheTTL,
		MaxSize:     constants.DefaultCacheSize,
		EnableETags: true,
	}
}

// MemoryCache is an in-process LRU cache.
type MemoryCache struct {
	entries *lru.Cache[string, *CacheEntry]
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, *CacheEntry](maxSize)

	return &MemoryCache{entries: entries}
}

// Get retrieves a non-expired entry.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if entry.Expired() {
		c.entries.Remove(key)

		return nil, fmt.Errorf("%w: %s", ErrEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry, evicting the least recently used one when full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	if len(entry.Data) > constants.MaxCacheValueSize {
		return ErrValueTooLarge
	}

	c.entries.Add(key, entry)

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.entries.Remove(key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.entries.Purge()

	return nil
}

// Has reports whether a non-expired entry exists.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	entry, ok := c.entries.Peek(key)

	return ok && !entry.Expired()
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok && entry.Expired() {
			c.entries.Remove(key)
		}
	}
}

// CacheStats counts cache activity.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Evicted int64
}

// GetHitRate returns hits / (hits + misses).
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager stores responses in a backend and keeps statistics.
type CacheManager struct {
	cache   Cache
	options *CacheOptions

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	evicted atomic.Int64
}

// NewCacheManager creates a manager around cache. A nil cache disables caching.
func NewCacheManager(cache Cache, options *CacheOptions) *CacheManager {
	if cache == nil {
		cache = NewNoOpCache()
	}

	if options == nil {
		options = DefaultCacheOptions()
	}

	return &CacheManager{cache: cache, options: options}
}

// TTL returns the default time-to-live of stored entries.
func (m *CacheManager) TTL() time.Duration {
	return m.options.TTL
}

// GetCacheKey builds a deterministic key from the method, URL and parameters.
func (m *CacheManager) GetCacheKey(method, rawURL string, params map[string]string) string {
	key := method + ":" + rawURL
	if len(params) == 0 {
		return key
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	return key + ":" + strings.Join(pairs, "&")
}

// GetEntry returns the full cached entry for key.
func (m *CacheManager) GetEntry(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.misses.Add(1)

		return nil, err
	}

	m.hits.Add(1)

	return entry, nil
}

// Get returns the cached data for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}

	return entry.Data, nil
}

// SetEntry stores entry. A zero ExpiresAt is replaced by now + TTL.
func (m *CacheManager) SetEntry(ctx context.Context, key string, entry *CacheEntry) error {
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = time.Now().Add(m.options.TTL)
	}

	if !m.options.EnableETags {
		entry.ETag = ""
	}

	err := m.cache.Set(ctx, key, entry)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	m.sets.Add(1)

	if entry.ETag == "" {
		return nil
	}

	validator := *entry
	validator.ExpiresAt = entry.ExpiresAt.Add(constants.ETagRetention)

	err = m.cache.Set(ctx, validatorKey(key), &validator)
	if err != nil {
		return fmt.Errorf("storing cache validator: %w", err)
	}

	return nil
}

// GetValidator returns the revalidation copy of an ETag-bearing entry. It
// stays available after the entry itself expired so that a conditional
// request can be sent. Statistics are not touched.
func (m *CacheManager) GetValidator(ctx context.Context, key string) (*CacheEntry, error) {
	if !m.options.EnableETags {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	entry, err := m.cache.Get(ctx, validatorKey(key))
	if err != nil {
		return nil, err
	}

	if entry.ETag == "" {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	return entry, nil
}

// Set stores data for ttl.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetEntry(ctx, key, &CacheEntry{Data: data, ExpiresAt: time.Now().Add(ttl)})
}

// SetWithETag stores data with an ETag for ttl.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	return m.SetEntry(ctx, key, &CacheEntry{Data: data, ETag: etag, ExpiresAt: time.Now().Add(ttl)})
}

// Invalidate removes key.
func (m *CacheManager) Invalidate(ctx context.Context, key string) error {
	err := m.cache.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("invalidating cache entry: %w", err)
	}

	err = m.cache.Delete(ctx, validatorKey(key))
	if err != nil {
		return fmt.Errorf("invalidating cache validator: %w", err)
	}

	m.evicted.Add(1)

	return nil
}

// Clear removes every entry.
func (m *CacheManager) Clear(ctx context.Context) error {
	err := m.cache.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	return nil
}

// GetStats returns a snapshot of the statistics.
func (m *CacheManager) GetStats() *CacheStats {
	return &CacheStats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Sets:    m.sets.Load(),
		Evicted: m.evicted.Load(),
	}
}

func validatorKey(key string) string {
	return key + "#etag"
}

// CachingPolicy decides which responses are cached.
type CachingPolicy struct {
	CacheGET     bool
	CachePOST    bool
	CacheErrors  bool
	IncludePaths []string
	ExcludePaths []string
}

// DefaultCachingPolicy caches successful GET responses for every path.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{CacheGET: true}
}

// ShouldCache reports whether a response to method/path with statusCode is cached.
// Paths match by substring so absolute URLs work as well as paths.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	switch method {
	case http.MethodGet:
		if !p.CacheGET {
			return false
		}
	case http.MethodPost:
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	success := statusCode >= constants.HTTPStatusOK && statusCode < constants.HTTPStatusMultipleChoices
	if !success && !p.CacheErrors {
		return false
	}

	for _, excluded := range p.ExcludePaths {
		if strings.Contains(path, excluded) {
			return false
		}
	}

	if len(p.IncludePaths) == 0 {
		return true
	}

	for _, included := range p.IncludePaths {
		if strings.Contains(path, included) {
			return true
		}
	}

	return false
}
