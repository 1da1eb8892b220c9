package music

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	ErrMissingInput     = errors.New("input is required")
	ErrSpotifyClientNil = errors.New("spotify client is not configured")
	ErrResolverNil      = errors.New("resolver is not configured")
	ErrLocalDisabled    = errors.New("local files are not playable here")
	ErrUnsupportedInput = errors.New("only http and https links are supported")
)

// Service resolves user input into tracks and tracks into playable streams.
// It satisfies the playback resolver contract, including prefetching.
type Service struct {
	resolver Resolver
	spotify  *SpotifyClient
	streams  *StreamCache
	search   *searchCache

	// localFiles lets host paths resolve to tracks. Only the local player
	// enables it.
	localFiles bool
}

func NewService(resolver Resolver, streams *StreamCache) *Service {
	if streams == nil {
		streams = NewStreamCache(nil, 0)
	}
	return &Service{
		resolver: resolver,
		streams:  streams,
		search:   newSearchCache(),
	}
}

func (s *Service) WithSpotify(client *SpotifyClient) *Service {
	s.spotify = client
	return s
}

// WithLocalFiles allows inputs naming files on this host.
func (s *Service) WithLocalFiles() *Service {
	s.localFiles = true
	return s
}

// ResolveInput turns a URL, a free-text query or, with local files enabled,
// a file path into a single track. Spotify tracks keep their metadata; the
// stream is found at play time.
func (s *Service) ResolveInput(ctx context.Context, input string, sourceHint TrackSource) (Track, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Track{}, ErrMissingInput
	}

	if s.localFiles {
		if track, ok := localTrack(input); ok {
			return track, nil
		}
	} else if looksLikeURL(input) && !isWebURL(input) {
		return Track{}, ErrUnsupportedInput
	}

	if isSpotifyInput(input, sourceHint) {
		if s.spotify == nil {
			return Track{}, ErrSpotifyClientNil
		}
		if isSpotifyLink(input) {
			return s.spotify.ResolveTrack(ctx, input)
		}
		return s.spotify.SearchTrack(ctx, input)
	}

	if s.resolver == nil {
		return Track{}, ErrResolverNil
	}
	return s.resolver.Resolve(ctx, input, sourceHint)
}

// ResolveStream returns a source the playback engine can load.
func (s *Service) ResolveStream(ctx context.Context, track Track) (string, error) {
	if track.Source == TrackSourceLocal {
		if !s.localFiles {
			return "", ErrLocalDisabled
		}
		if track.URL == "" {
			return "", fmt.Errorf("%w: local track without path", ErrResolveFailed)
		}
		return track.URL, nil
	}
	if track.StreamURL != "" {
		return track.StreamURL, nil
	}
	if s.resolver == nil {
		return "", ErrResolverNil
	}

	key := track.Key()
	if cached, ok := s.streams.Get(ctx, key); ok {
		return cached, nil
	}

	var (
		streamURL string
		err       error
	)
	if track.Source == TrackSourceSpotify {
		streamURL, err = s.resolveSpotifyStream(ctx, track)
	} else {
		target := track.URL
		if target == "" {
			target = track.DisplayName()
		}
		streamURL, err = s.resolver.ResolveStreamURL(ctx, target, track.Source)
	}
	if err != nil {
		return "", err
	}

	s.streams.Set(ctx, key, streamURL)
	return streamURL, nil
}

// Prefetch resolves the stream of a track that is likely to play next so the
// cache is warm when it does.
func (s *Service) Prefetch(ctx context.Context, track Track) {
	if _, err := s.ResolveStream(ctx, track); err != nil {
		log.WithField("track", track.ID).Debugf("prefetch failed: %v", err)
	}
}

// Spotify does not serve audio; the recording is looked up on YouTube, by
// ISRC first when one is known.
func (s *Service) resolveSpotifyStream(ctx context.Context, track Track) (string, error) {
	if track.MediaID != "" {
		streamURL, err := s.resolver.ResolveStreamURL(ctx, `"`+track.MediaID+`"`, TrackSourceYouTube)
		if err == nil {
			return streamURL, nil
		}
		log.WithField("isrc", track.MediaID).Debugf("isrc lookup failed, falling back to title: %v", err)
	}

	query := strings.TrimSpace(track.Artist + " " + track.Title)
	return s.resolver.ResolveStreamURL(ctx, query, TrackSourceYouTube)
}

func (s *Service) Validate() error {
	if s.resolver == nil {
		return ErrResolverNil
	}
	return nil
}

func (s *Service) DebugString() string {
	return fmt.Sprintf("resolver=%t spotify=%t stream_cache=%s", s.resolver != nil, s.spotify != nil, s.streams.Backend())
}

func localTrack(input string) (Track, bool) {
	if looksLikeURL(input) {
		return Track{}, false
	}

	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return Track{}, false
	}

	path, err := filepath.Abs(input)
	if err != nil {
		path = input
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return Track{
		ID:     path,
		Title:  title,
		URL:    path,
		Source: TrackSourceLocal,
	}, true
}

func isWebURL(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isSpotifyInput(input string, hint TrackSource) bool {
	return hint == TrackSourceSpotify || isSpotifyLink(input)
}

func isSpotifyLink(input string) bool {
	lower := strings.ToLower(input)
	return strings.Contains(lower, "spotify.com") || strings.HasPrefix(lower, "spotify:track:")
}
