package config

import "time"

// RateLimitConfig configures one Redis token bucket.  The API bucket limits
// authenticated HTTP calls; the device bucket limits websocket handshakes so
// a flapping table device cannot reconnect in a tight loop.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads the API bucket from RATE_LIMIT_*.
func LoadRateLimitConfig() RateLimitConfig {
    return loadBucket("RATE_LIMIT", RateLimitConfig{
        Capacity:       60,
        RefillTokens:   1,
        RefillInterval: time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip_store_route",
        Prefix:         "rl",
    })
}

// LoadDeviceRateLimitConfig reads the device handshake bucket from
// DEVICE_RATE_LIMIT_*.  Devices are keyed by store and table.
func LoadDeviceRateLimitConfig() RateLimitConfig {
    return loadBucket("DEVICE_RATE_LIMIT", RateLimitConfig{
        Capacity:       5,
        RefillTokens:   1,
        RefillInterval: 10 * time.Second,
        TTL:            10 * time.Minute,
        KeyStrategy:    "table",
        Prefix:         "rl:device",
    })
}

func loadBucket(env string, def RateLimitConfig) RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool(env+"_ENABLED", true),
        Capacity:       envInt(env+"_CAPACITY", def.Capacity),
        RefillTokens:   envInt(env+"_REFILL_TOKENS", def.RefillTokens),
        RefillInterval: envDur(env+"_REFILL_INTERVAL", def.RefillInterval),
        TTL:            envDur(env+"_TTL", def.TTL),
        KeyStrategy:    envStr(env+"_KEY_STRATEGY", def.KeyStrategy),
        Prefix:         envStr(env+"_PREFIX", def.Prefix),
        Debug:          envBool(env+"_DEBUG", false),
    }
    if b := envInt(env+"_BURST", -1); b > 0 { cfg.Capacity = b }
    if cfg.Capacity < 1 { cfg.Capacity = 1 }
    if cfg.RefillTokens < 1 { cfg.RefillTokens = 1 }
    if cfg.RefillInterval <= 0 { cfg.RefillInterval = time.Second }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL { cfg.TTL = minTTL }
    return cfg
}
