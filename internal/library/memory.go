package library

import (
	"context"
	"sync"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
	"github.com/samber/lo"
)

type ownerLists struct {
	favorites []music.Track
	history   []music.Track
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[string]*ownerLists
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{owners: make(map[string]*ownerLists)}
}

func (s *MemoryStore) lists(owner string) *ownerLists {
	l, ok := s.owners[owner]
	if !ok {
		l = &ownerLists{}
		s.owners[owner] = l
	}
	return l
}

func (s *MemoryStore) Favorites(ctx context.Context, owner string) ([]music.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.owners[owner]; ok {
		return append([]music.Track(nil), l.favorites...), nil
	}
	return nil, nil
}

func (s *MemoryStore) AddFavorite(ctx context.Context, owner string, track music.Track, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists(owner)
	l.favorites = pushFront(l.favorites, track, 0)
	return nil
}

func (s *MemoryStore) RemoveFavorite(ctx context.Context, owner string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists(owner)
	l.favorites = lo.Reject(l.favorites, func(t music.Track, _ int) bool { return t.Key() == key })
	return nil
}

func (s *MemoryStore) History(ctx context.Context, owner string, limit int) ([]music.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.owners[owner]
	if !ok {
		return nil, nil
	}
	history := l.history
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return append([]music.Track(nil), history...), nil
}

func (s *MemoryStore) PushHistory(ctx context.Context, owner string, track music.Track, at time.Time, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists(owner)
	l.history = pushFront(l.history, track, limit)
	return nil
}
