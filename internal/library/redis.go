package library

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
	internalredis "github.com/hxnx/moonplayer/internal/redis"
	redislib "github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const (
	favoritesKeyPrefix = "library:favorites:"
	historyKeyPrefix   = "library:history:"
	tracksKeyPrefix    = "library:tracks:"
)

// pushScript adds a member to a list and trims it to ARGV[4] entries. Bodies
// of trimmed members are dropped unless the other list still holds them.
//
// KEYS: list, tracks hash, other list. ARGV: member, body, score, limit.
var pushScript = redislib.NewScript(`
	local list, tracks, other = KEYS[1], KEYS[2], KEYS[3]
	redis.call('HSET', tracks, ARGV[1], ARGV[2])
	redis.call('ZADD', list, ARGV[3], ARGV[1])
	local limit = tonumber(ARGV[4])
	if limit > 0 then
		local dropped = redis.call('ZRANGE', list, 0, -limit - 1)
		if #dropped > 0 then
			redis.call('ZREMRANGEBYRANK', list, 0, -limit - 1)
			for _, member in ipairs(dropped) do
				if not redis.call('ZSCORE', other, member) then
					redis.call('HDEL', tracks, member)
				end
			end
		end
	end
	return 1
`)

// removeScript removes a member from a list and drops its body unless the
// other list still holds it.
//
// KEYS: list, tracks hash, other list. ARGV: member.
var removeScript = redislib.NewScript(`
	local list, tracks, other = KEYS[1], KEYS[2], KEYS[3]
	local removed = redis.call('ZREM', list, ARGV[1])
	if not redis.call('ZSCORE', other, ARGV[1]) then
		redis.call('HDEL', tracks, ARGV[1])
	end
	return removed
`)

// RedisStore keeps each list as a sorted set of track keys scored by time,
// with the track bodies in a per-owner hash shared by both lists. Re-adding
// a member updates its score, which is what moves a replayed track to the
// front.
type RedisStore struct {
	mu     sync.Mutex
	client *redislib.Client
}

func NewRedisStore(client *redislib.Client) *RedisStore {
	return &RedisStore{client: client}
}

func NewRedisStoreFromDefault() *RedisStore {
	return &RedisStore{client: internalredis.Client()}
}

// ensureClient picks up the shared client once it exists. The client is never
// replaced after that, so callers may read s.client once this returns nil.
func (s *RedisStore) ensureClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	s.client = internalredis.Client()
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

func (s *RedisStore) Favorites(ctx context.Context, owner string) ([]music.Track, error) {
	return s.list(ctx, owner, favoritesKeyPrefix+owner, 0)
}

func (s *RedisStore) AddFavorite(ctx context.Context, owner string, track music.Track, at time.Time) error {
	return s.add(ctx, owner, favoritesKeyPrefix+owner, historyKeyPrefix+owner, track, at, 0)
}

func (s *RedisStore) RemoveFavorite(ctx context.Context, owner string, key string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	keys := []string{favoritesKeyPrefix + owner, tracksKeyPrefix + owner, historyKeyPrefix + owner}
	return removeScript.Run(ctx, s.client, keys, key).Err()
}

func (s *RedisStore) History(ctx context.Context, owner string, limit int) ([]music.Track, error) {
	return s.list(ctx, owner, historyKeyPrefix+owner, limit)
}

func (s *RedisStore) PushHistory(ctx context.Context, owner string, track music.Track, at time.Time, limit int) error {
	return s.add(ctx, owner, historyKeyPrefix+owner, favoritesKeyPrefix+owner, track, at, limit)
}

func (s *RedisStore) add(ctx context.Context, owner, setKey, otherKey string, track music.Track, at time.Time, limit int) error {
	if err := s.ensureClient(); err != nil {
		return err
	}

	payload, err := json.Marshal(track)
	if err != nil {
		return err
	}

	// Ranks are ascending by score, so trimming drops the oldest entries.
	keys := []string{setKey, tracksKeyPrefix + owner, otherKey}
	return pushScript.Run(ctx, s.client, keys, track.Key(), payload, at.UnixNano(), max(limit, 0)).Err()
}

func (s *RedisStore) list(ctx context.Context, owner, setKey string, limit int) ([]music.Track, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	keys, err := s.client.ZRevRange(ctx, setKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	bodies, err := s.client.HMGet(ctx, tracksKeyPrefix+owner, keys...).Result()
	if err != nil {
		return nil, err
	}

	tracks := lo.FilterMap(bodies, func(raw interface{}, _ int) (music.Track, bool) {
		str, ok := raw.(string)
		if !ok {
			return music.Track{}, false
		}
		var track music.Track
		if err := json.Unmarshal([]byte(str), &track); err != nil {
			return music.Track{}, false
		}
		return track, true
	})
	return tracks, nil
}
