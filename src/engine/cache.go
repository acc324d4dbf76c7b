package engine

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/sofmeright/lintconf/src/ruleset"
)

// Cache keeps effective configs by override signature. Every path with the
// same signature resolves to the same config, so one entry serves all of
// them. Cached configs are shared and must not be modified.
type Cache struct {
	entries *lru.Cache[string, *ruleset.EffectiveConfig]
	flight  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding at most size configs.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, *ruleset.EffectiveConfig](size)
	if err != nil {
		return nil, fmt.Errorf("creating config cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Get returns the config cached under key, building and storing it on a
// miss. Concurrent misses for one key build it once. A nil cache always
// builds.
func (c *Cache) Get(key string, build func() *ruleset.EffectiveConfig) *ruleset.EffectiveConfig {
	if c == nil {
		return build()
	}
	if cfg, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return cfg
	}

	built := false
	v, _, _ := c.flight.Do(key, func() (any, error) {
		if cfg, ok := c.entries.Get(key); ok {
			return cfg, nil
		}
		built = true
		cfg := build()
		c.entries.Add(key, cfg)
		return cfg, nil
	})
	if built {
		c.misses.Add(1)
	} else {
		c.hits.Add(1)
	}
	return v.(*ruleset.EffectiveConfig)
}

// Stats returns hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached configs.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Purge drops every entry, e.g. after the fragments were reloaded.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}
