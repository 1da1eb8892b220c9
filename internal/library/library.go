// Package library keeps per-owner favorites and a bounded play history.
package library

import (
	"context"
	"errors"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
	"github.com/samber/lo"
)

const DefaultHistoryLimit = 50

var (
	ErrMissingOwner = errors.New("owner is required")
	ErrMissingTrack = errors.New("track has no identity")
)

// Store persists favorites and history. Both lists are ordered most recent
// first. PushHistory must move an existing entry to the front instead of
// duplicating it, then trim the list to limit.
type Store interface {
	Favorites(ctx context.Context, owner string) ([]music.Track, error)
	AddFavorite(ctx context.Context, owner string, track music.Track, at time.Time) error
	RemoveFavorite(ctx context.Context, owner string, key string) error
	History(ctx context.Context, owner string, limit int) ([]music.Track, error)
	PushHistory(ctx context.Context, owner string, track music.Track, at time.Time, limit int) error
}

type Library struct {
	store        Store
	historyLimit int
	now          func() time.Time
}

func New(store Store, historyLimit int) *Library {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Library{
		store:        store,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

func (l *Library) HistoryLimit() int {
	return l.historyLimit
}

// ToggleFavorite adds the track to the front of the favorites or removes it
// when it is already there. It reports whether the track is now a favorite.
func (l *Library) ToggleFavorite(ctx context.Context, owner string, track music.Track) (bool, error) {
	if err := validate(owner, track); err != nil {
		return false, err
	}

	favorite, err := l.IsFavorite(ctx, owner, track)
	if err != nil {
		return false, err
	}

	if favorite {
		return false, l.store.RemoveFavorite(ctx, owner, track.Key())
	}
	return true, l.store.AddFavorite(ctx, owner, stripStream(track), l.now())
}

func (l *Library) IsFavorite(ctx context.Context, owner string, track music.Track) (bool, error) {
	favorites, err := l.Favorites(ctx, owner)
	if err != nil {
		return false, err
	}
	key := track.Key()
	return lo.ContainsBy(favorites, func(t music.Track) bool { return t.Key() == key }), nil
}

func (l *Library) Favorites(ctx context.Context, owner string) ([]music.Track, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}
	return l.store.Favorites(ctx, owner)
}

// AddHistory records a play. A track already in the history moves to the
// front.
func (l *Library) AddHistory(ctx context.Context, owner string, track music.Track) error {
	if err := validate(owner, track); err != nil {
		return err
	}
	return l.store.PushHistory(ctx, owner, stripStream(track), l.now(), l.historyLimit)
}

// History returns up to limit entries, most recent first. A non-positive
// limit returns everything kept.
func (l *Library) History(ctx context.Context, owner string, limit int) ([]music.Track, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}
	if limit <= 0 || limit > l.historyLimit {
		limit = l.historyLimit
	}
	return l.store.History(ctx, owner, limit)
}

func validate(owner string, track music.Track) error {
	if owner == "" {
		return ErrMissingOwner
	}
	if track.ID == "" && track.URL == "" {
		return ErrMissingTrack
	}
	return nil
}

// Resolved stream URLs expire; they are never persisted.
func stripStream(track music.Track) music.Track {
	if track.Source != music.TrackSourceLocal {
		track.StreamURL = ""
	}
	return track
}

// pushFront moves or inserts track at the front of list and trims it.
func pushFront(list []music.Track, track music.Track, limit int) []music.Track {
	key := track.Key()
	rest := lo.Reject(list, func(t music.Track, _ int) bool { return t.Key() == key })

	out := append([]music.Track{track}, rest...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
