package baseline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"spikewatch/internal/measurement"

	redis "github.com/redis/go-redis/v9"
)

// Cache is an expiring string key-value store. Baselines and dedup records
// both live here; a missing or unreadable value is always treated as absent.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration)
	Exists(key string) bool
}

// Key builds the baseline key for one (stream, code) pair,
// e.g. "ticker:baseline:KRW-BTC".
func Key(stream measurement.StreamType, code string) string {
	return strings.ToLower(string(stream)) + ":baseline:" + code
}

// ConfirmedKey builds the dedup key for a confirmed (code, direction) pair,
// e.g. "spike:confirmed:KRW-BTC:UP".
func ConfirmedKey(code string, direction measurement.Direction) string {
	return "spike:confirmed:" + code + ":" + string(direction)
}

// SetObject stores value as JSON under key.
func SetObject(c Cache, key string, value any, ttl time.Duration) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(key, string(b), ttl)
}

// GetObject reads a JSON value into out. A decode failure counts as a miss
// so corrupted baselines re-seed instead of propagating an error.
func GetObject(c Cache, key string, out any) bool {
	raw, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

const redisOpTimeout = 500 * time.Millisecond

type redisCache struct {
	client *redis.Client
}

// NewRedis wraps a go-redis client. Operation failures degrade to misses.
func NewRedis(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (r *redisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *redisCache) Set(key, value string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	_ = r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Exists(key string) bool {
	_, ok := r.Get(key)
	return ok
}

type memoryCache struct {
	mu sync.Mutex
	m  map[string]memoryEntry
}

type memoryEntry struct {
	value string
	exp   time.Time
}

// NewMemory returns an in-process Cache, used in tests and when no Redis
// address is configured.
func NewMemory() Cache {
	return &memoryCache{m: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		delete(c.m, key)
		return "", false
	}
	return e.value, true
}

func (c *memoryCache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	c.m[key] = e
}

func (c *memoryCache) Exists(key string) bool {
	_, ok := c.Get(key)
	return ok
}
