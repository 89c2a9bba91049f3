package lingo

import (
	"context"
	"fmt"

	"github.com/pitabwire/lingo/cache"
	"github.com/pitabwire/lingo/cache/redis"
	"github.com/pitabwire/lingo/cache/valkey"
	"github.com/pitabwire/lingo/config"
)

func openSlugCache(ctx context.Context, cfg *config.Configuration) (cache.RawCache, error) {
	opts := []cache.Option{
		cache.WithName(cfg.Name()),
		cache.WithDSN(cfg.SlugCacheDSN),
		cache.WithMaxAge(cfg.SlugCacheMaxAge),
	}

	switch cfg.SlugCacheDriver {
	case "", config.SlugCacheMemory:
		return cache.NewInMemoryCache(opts...), nil
	case config.SlugCacheRedis:
		c, err := redis.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("lingo: slug cache: %w", err)
		}
		return c, nil
	case config.SlugCacheValkey:
		c, err := valkey.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("lingo: slug cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("lingo: unknown slug cache driver %q", cfg.SlugCacheDriver)
	}
}
