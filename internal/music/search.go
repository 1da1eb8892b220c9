package music

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultSearchLimit = 4
const maxSearchLimit = 10
const searchCacheTTL = 5 * time.Minute

type searchCacheEntry struct {
	results   []Track
	expiresAt time.Time
}

type searchCache struct {
	mu   sync.RWMutex
	data map[string]searchCacheEntry
	now  func() time.Time
}

func newSearchCache() *searchCache {
	return &searchCache{
		data: make(map[string]searchCacheEntry),
		now:  time.Now,
	}
}

// Search returns up to limit candidate tracks for query. Spotify links and
// Spotify-hinted queries go to the Spotify API, everything else to yt-dlp.
// Results are cached briefly so paging through a result list is cheap.
func (s *Service) Search(ctx context.Context, query string, sourceHint TrackSource, limit int) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingInput
	}

	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	key := cacheKey(query, sourceHint, limit)
	if cached, ok := s.search.get(key); ok {
		return cached, nil
	}

	var (
		results []Track
		err     error
	)

	switch {
	case isSpotifyInput(query, sourceHint):
		results, err = s.searchSpotify(ctx, query, limit)
	case s.resolver == nil:
		return nil, ErrResolverNil
	default:
		results, err = s.resolver.ResolveSearch(ctx, query, sourceHint, limit)
	}
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no search results", ErrResolveFailed)
	}

	s.search.set(key, results)
	return results, nil
}

func (s *Service) searchSpotify(ctx context.Context, query string, limit int) ([]Track, error) {
	if s.spotify == nil {
		return nil, ErrSpotifyClientNil
	}
	if isSpotifyLink(query) {
		track, err := s.spotify.ResolveTrack(ctx, query)
		if err != nil {
			return nil, err
		}
		return []Track{track}, nil
	}
	return s.spotify.SearchTracks(ctx, query, limit)
}

func cacheKey(query string, sourceHint TrackSource, limit int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s:%d:%s", sourceHint, limit, normalized)
}

func (c *searchCache) get(key string) ([]Track, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return append([]Track(nil), entry.results...), true
}

func (c *searchCache) set(key string, results []Track) {
	c.mu.Lock()
	c.data[key] = searchCacheEntry{
		results:   append([]Track(nil), results...),
		expiresAt: c.now().Add(searchCacheTTL),
	}
	c.mu.Unlock()
}
