package config

import "time"

// CacheConfig defines settings for the menu response cache.  Store menus
// change rarely and every kiosk fetches them before each reservation, so
// GET /v1/stores/:id/menus is served from Redis when enabled.  When Enabled
// is false or no Redis client is configured, caching is disabled.
// MaxBodyBytes bounds the size of a cached response.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 5*time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "cache:menus"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}
