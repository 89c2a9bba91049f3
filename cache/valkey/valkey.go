package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/pitabwire/lingo/cache"
)

// Cache is a Valkey-backed cache implementation using the official Valkey client.
type Cache struct {
	client valkey.Client
	maxAge time.Duration
}

const connectionTimeout = 5 * time.Second

// New creates a Valkey cache from a redis:// or rediss:// DSN.
func New(ctx context.Context, opts ...cache.Option) (*Cache, error) {
	cacheOpts := cache.NewOptions(opts...)

	valkeyOpts, err := valkey.ParseURL(cacheOpts.DSN)
	if err != nil {
		return nil, fmt.Errorf("valkey cache: %w", err)
	}
	if cacheOpts.Name != "" {
		valkeyOpts.ClientName = cacheOpts.Name
	}

	client, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, fmt.Errorf("valkey cache: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if pingErr := client.Do(pingCtx, client.B().Ping().Build()).Error(); pingErr != nil {
		client.Close()
		return nil, fmt.Errorf("valkey cache: ping: %w", pingErr)
	}

	return &Cache{client: client, maxAge: cacheOpts.MaxAge}, nil
}

// Get retrieves an item from the cache.
func (vc *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := vc.client.Do(ctx, vc.client.B().Get().Key(key).Build())

	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	val, err := resp.AsBytes()
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set sets an item in the cache with the specified TTL, the max age when ttl is zero.
func (vc *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = vc.maxAge
	}

	if ttl <= 0 {
		return vc.client.Do(ctx, vc.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()).Error()
	}

	// Ex expects whole seconds.
	seconds := int64(ttl.Seconds())
	if seconds == 0 {
		seconds = 1
	}
	cmd := vc.client.B().Set().Key(key).Value(valkey.BinaryString(value)).ExSeconds(seconds).Build()
	return vc.client.Do(ctx, cmd).Error()
}

// Delete removes an item from the cache.
func (vc *Cache) Delete(ctx context.Context, key string) error {
	return vc.client.Do(ctx, vc.client.B().Del().Key(key).Build()).Error()
}

// Exists checks if a key exists in the cache.
func (vc *Cache) Exists(ctx context.Context, key string) (bool, error) {
	resp := vc.client.Do(ctx, vc.client.B().Exists().Key(key).Build())
	if err := resp.Error(); err != nil {
		return false, err
	}

	count, err := resp.AsInt64()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Flush clears all items from the cache.
func (vc *Cache) Flush(ctx context.Context) error {
	return vc.client.Do(ctx, vc.client.B().Flushdb().Build()).Error()
}

// Close closes the Valkey connection.
func (vc *Cache) Close() error {
	vc.client.Close()
	return nil
}
