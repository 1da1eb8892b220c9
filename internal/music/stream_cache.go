package music

import (
	"context"
	"sync"
	"time"

	internalredis "github.com/hxnx/moonplayer/internal/redis"
	redislib "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	streamKeyPrefix       = "music:stream:"
	defaultStreamCacheTTL = 2 * time.Hour
)

type streamEntry struct {
	url       string
	expiresAt time.Time
}

// StreamCache remembers resolved stream URLs. Entries live in process memory
// and, when a redis client is configured, in redis so restarts keep them.
type StreamCache struct {
	client *redislib.Client
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]streamEntry
	now   func() time.Time
}

func NewStreamCache(client *redislib.Client, ttl time.Duration) *StreamCache {
	if ttl <= 0 {
		ttl = defaultStreamCacheTTL
	}
	return &StreamCache{
		client: client,
		ttl:    ttl,
		local:  make(map[string]streamEntry),
		now:    time.Now,
	}
}

func NewStreamCacheFromDefault(ttl time.Duration) *StreamCache {
	return NewStreamCache(internalredis.Client(), ttl)
}

func (c *StreamCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	entry, ok := c.local[key]
	if ok && c.now().After(entry.expiresAt) {
		delete(c.local, key)
		ok = false
	}
	c.mu.Unlock()
	if ok {
		return entry.url, true
	}

	if c.client == nil {
		return "", false
	}

	value, err := c.client.Get(ctx, streamKeyPrefix+key).Result()
	if err != nil {
		if err != redislib.Nil {
			log.Warnf("stream cache lookup failed: %v", err)
		}
		return "", false
	}

	c.remember(key, value)
	return value, true
}

func (c *StreamCache) Set(ctx context.Context, key, streamURL string) {
	c.remember(key, streamURL)

	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, streamKeyPrefix+key, streamURL, c.ttl).Err(); err != nil {
		log.Warnf("stream cache write failed: %v", err)
	}
}

func (c *StreamCache) Backend() string {
	if c.client == nil {
		return "memory"
	}
	return "redis"
}

func (c *StreamCache) remember(key, streamURL string) {
	c.mu.Lock()
	c.local[key] = streamEntry{url: streamURL, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
