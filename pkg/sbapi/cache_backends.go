package sbapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// NATSKVConfig configures the NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server. Ignored when Conn is set.
	URL string
	// Conn is an existing connection. The cache does not close it.
	Conn *nats.Conn
	// Bucket is the KV bucket name. Defaults to "sbapi-cache".
	Bucket string
	// TTL is the bucket-wide entry lifetime. Defaults to the cache TTL.
	TTL time.Duration
}

// NATSKVCache stores entries in a JetStream KV bucket.
type NATSKVCache struct {
	conn    *nats.Conn
	ownConn bool
	kv      jetstream.KeyValue
}

// NewNATSKVCache connects (if needed) and creates or binds the bucket.
func NewNATSKVCache(ctx context.Context, config *NATSKVConfig) (*NATSKVCache, error) {
	conn := config.Conn
	ownConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("sbapi-cache"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownConn = true
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	ttl := config.TTL
	if ttl == 0 {
		ttl = constants.DefaultCacheTTL
	}

	js, err := jetstream.New(conn)
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "smartbusiness API response cache",
		TTL:         ttl,
	})
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("creating KV bucket %s: %w", bucket, err)
	}

	return &NATSKVCache{conn: conn, ownConn: ownConn, kv: kv}, nil
}

func closeIfOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

// Get retrieves an entry.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kve, err := c.kv.Get(ctx, kvKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}

		return nil, fmt.Errorf("reading KV entry: %w", err)
	}

	return decodeEntry(key, kve.Value())
}

// Set stores an entry.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	_, err = c.kv.Put(ctx, kvKey(key), data)
	if err != nil {
		return fmt.Errorf("writing KV entry: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, kvKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting KV entry: %w", err)
	}

	return nil
}

// Clear removes every entry in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing KV keys: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		err = c.kv.Purge(ctx, key)
		if err != nil {
			return fmt.Errorf("purging KV entry: %w", err)
		}
	}

	return nil
}

// Has checks whether a non-expired entry exists.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the connection when the cache opened it.
func (c *NATSKVCache) Close() {
	closeIfOwned(c.conn, c.ownConn)
}

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	// Addr is host:port. Ignored when Client is set.
	Addr     string
	Password string
	DB       int
	// Client is an existing client. The cache does not close it.
	Client *redis.Client
	// Prefix namespaces keys. Defaults to "sbapi:cache:".
	Prefix string
}

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	client    *redis.Client
	ownClient bool
	prefix    string
}

// NewRedisCache creates a Redis cache and checks connectivity.
func NewRedisCache(ctx context.Context, config *RedisConfig) (*RedisCache, error) {
	client := config.Client
	ownClient := false

	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
		ownClient = true
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		if ownClient {
			_ = client.Close()
		}

		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}

	return &RedisCache{client: client, ownClient: ownClient, prefix: prefix}, nil
}

// Get retrieves an entry.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}

		return nil, fmt.Errorf("reading Redis entry: %w", err)
	}

	return decodeEntry(key, data)
}

// Set stores an entry until its expiry.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	err = c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	if err != nil {
		return fmt.Errorf("writing Redis entry: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("deleting Redis entry: %w", err)
	}

	return nil
}

// Clear removes every key under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			return fmt.Errorf("deleting Redis entry: %w", err)
		}
	}

	err := iter.Err()
	if err != nil {
		return fmt.Errorf("scanning Redis keys: %w", err)
	}

	return nil
}

// Has checks whether an entry exists.
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, c.prefix+key).Result()

	return err == nil && n > 0
}

// Close closes the client when the cache created it.
func (c *RedisCache) Close() error {
	if !c.ownClient {
		return nil
	}

	return c.client.Close()
}

// kvKey maps arbitrary cache keys onto the KV key alphabet.
func kvKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

func encodeEntry(entry *CacheEntry) ([]byte, error) {
	if len(entry.Data) > constants.MaxCacheValueSize {
		return nil, ErrValueTooLarge
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encoding cache entry: %w", err)
	}

	return data, nil
}

func decodeEntry(key string, data []byte) (*CacheEntry, error) {
	var entry CacheEntry

	err := json.Unmarshal(data, &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.Expired() {
		return nil, fmt.Errorf("%w: %s", ErrEntryExpired, key)
	}

	return &entry, nil
}
