package music

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtractSpotifyTrackID(t *testing.T) {
	tests := map[string]string{
		"spotify:track:4uLU6hMCjMI75M1A2tKUQC":                          "4uLU6hMCjMI75M1A2tKUQC",
		"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=x":    "4uLU6hMCjMI75M1A2tKUQC",
		"https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC": "4uLU6hMCjMI75M1A2tKUQC",
		"https://open.spotify.com/album/abc":                            "",
		"https://youtube.com/track/abc":                                 "",
		"  ":                                                            "",
	}
	for in, want := range tests {
		if got := extractSpotifyTrackID(in); got != want {
			t.Errorf("extractSpotifyTrackID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectSourceFromURL(t *testing.T) {
	tests := map[string]TrackSource{
		"https://www.youtube.com/watch?v=abc": TrackSourceYouTube,
		"https://youtu.be/abc":                TrackSourceYouTube,
		"https://soundcloud.com/a/b":          TrackSourceSoundCloud,
		"https://open.spotify.com/track/x":    TrackSourceSpotify,
		"https://example.com/song.mp3":        TrackSourceUnknown,
	}
	for in, want := range tests {
		if got := detectSourceFromURL(in); got != want {
			t.Errorf("detectSourceFromURL(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSearchTarget(t *testing.T) {
	got, err := searchTarget(" lofi beats ", TrackSourceUnknown, 4)
	if err != nil || got != "ytsearch4:lofi beats" {
		t.Fatalf("got %q, %v", got, err)
	}

	got, err = searchTarget("lofi", TrackSourceSoundCloud, 2)
	if err != nil || got != "scsearch2:lofi" {
		t.Fatalf("got %q, %v", got, err)
	}

	got, err = searchTarget("https://youtu.be/abc", TrackSourceUnknown, 4)
	if err != nil || got != "https://youtu.be/abc" {
		t.Fatalf("got %q, %v", got, err)
	}

	if _, err := searchTarget("   ", TrackSourceUnknown, 4); !errors.Is(err, ErrResolveFailed) {
		t.Fatalf("empty input err = %v", err)
	}
}

func TestYTDLPItemToTrack(t *testing.T) {
	item := ytDLPItem{
		ID:         "abc",
		Title:      "  Song ",
		Uploader:   "Channel",
		WebpageURL: "https://www.youtube.com/watch?v=abc",
		Duration:   90.5,
	}

	track, ok := item.toTrack(TrackSourceUnknown)
	if !ok {
		t.Fatal("usable item rejected")
	}
	if track.Title != "Song" || track.Artist != "Channel" {
		t.Fatalf("got %q by %q", track.Title, track.Artist)
	}
	if track.Source != TrackSourceYouTube {
		t.Fatalf("source = %s", track.Source)
	}
	if track.Duration != 90500*time.Millisecond {
		t.Fatalf("duration = %s", track.Duration)
	}

	if _, ok := (ytDLPItem{Title: "no link"}).toTrack(TrackSourceUnknown); ok {
		t.Fatal("item without link accepted")
	}
}

func TestPickYTDLPItems(t *testing.T) {
	root := ytDLPItem{Entries: []ytDLPItem{
		{},
		{Title: "a", URL: "https://x/a"},
		{Title: "b", URL: "https://x/b"},
		{Title: "c", URL: "https://x/c"},
	}}

	items, err := pickYTDLPItems(root, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Title != "a" || items[1].Title != "b" {
		t.Fatalf("got %+v", items)
	}

	if _, err := pickYTDLPItems(ytDLPItem{Entries: []ytDLPItem{{}}}, 3); !errors.Is(err, ErrResolveFailed) {
		t.Fatalf("err = %v", err)
	}

	single, err := pickYTDLPItems(ytDLPItem{Title: "one", URL: "https://x/1"}, 0)
	if err != nil || len(single) != 1 {
		t.Fatalf("got %v, %v", single, err)
	}
}

func TestParseSettings(t *testing.T) {
	defaults := Settings{AutoPlay: true, Volume: 80}

	got := parseSettings(map[string]string{"auto_play": "false", "volume": "55"}, defaults)
	if got.AutoPlay || got.Volume != 55 {
		t.Fatalf("got %+v", got)
	}

	got = parseSettings(map[string]string{"auto_play": "maybe", "volume": ""}, defaults)
	if got != defaults {
		t.Fatalf("malformed values changed settings: %+v", got)
	}
}

func TestStreamCacheExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewStreamCache(nil, time.Minute)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	cache.Set(ctx, "k", "https://stream")

	if got, ok := cache.Get(ctx, "k"); !ok || got != "https://stream" {
		t.Fatalf("got %q, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatal("expired entry returned")
	}
	if cache.Backend() != "memory" {
		t.Fatalf("backend = %s", cache.Backend())
	}
}

func TestSearchCache(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := newSearchCache()
	cache.now = func() time.Time { return now }

	key := cacheKey("  Lofi ", TrackSourceYouTube, 4)
	if key != cacheKey("lofi", TrackSourceYouTube, 4) {
		t.Fatal("cache key not normalized")
	}

	results := []Track{{Title: "a"}}
	cache.set(key, results)
	results[0].Title = "mutated"

	got, ok := cache.get(key)
	if !ok || got[0].Title != "a" {
		t.Fatalf("got %+v, %v", got, ok)
	}

	now = now.Add(searchCacheTTL + time.Second)
	if _, ok := cache.get(key); ok {
		t.Fatal("expired search returned")
	}
}

func TestTrackKey(t *testing.T) {
	if got := (Track{ID: "abc", Source: TrackSourceYouTube}).Key(); got != "youtube:abc" {
		t.Fatalf("got %q", got)
	}
	if got := (Track{URL: "/tmp/a.ogg", Source: TrackSourceLocal}).Key(); got != "local:/tmp/a.ogg" {
		t.Fatalf("got %q", got)
	}
	if got := (Track{Title: "T"}).DisplayName(); got != "T" {
		t.Fatalf("got %q", got)
	}
}

type stubResolver struct {
	inputs  []string
	streams []string
}

func (r *stubResolver) Resolve(ctx context.Context, input string, sourceHint TrackSource) (Track, error) {
	r.inputs = append(r.inputs, input)
	return Track{ID: "remote", Title: input, URL: "https://www.youtube.com/watch?v=remote", Source: TrackSourceYouTube}, nil
}

func (r *stubResolver) ResolveSearch(ctx context.Context, input string, sourceHint TrackSource, limit int) ([]Track, error) {
	return nil, nil
}

func (r *stubResolver) ResolveStreamURL(ctx context.Context, input string, sourceHint TrackSource) (string, error) {
	r.streams = append(r.streams, input)
	return "https://stream/" + input, nil
}

func TestLocalPathsRequireOptIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	res := &stubResolver{}
	remote := NewService(res, nil)

	track, err := remote.ResolveInput(ctx, path, TrackSourceUnknown)
	if err != nil {
		t.Fatal(err)
	}
	if track.Source == TrackSourceLocal {
		t.Fatal("host path resolved to a local track")
	}
	if len(res.inputs) != 1 || res.inputs[0] != path {
		t.Fatalf("resolver inputs = %v", res.inputs)
	}

	local := Track{ID: path, URL: path, Source: TrackSourceLocal, StreamURL: path}
	if _, err := remote.ResolveStream(ctx, local); !errors.Is(err, ErrLocalDisabled) {
		t.Fatalf("err = %v, want ErrLocalDisabled", err)
	}

	player := NewService(&stubResolver{}, nil).WithLocalFiles()
	track, err = player.ResolveInput(ctx, path, TrackSourceUnknown)
	if err != nil || track.Source != TrackSourceLocal {
		t.Fatalf("got %+v, %v", track, err)
	}
	if stream, err := player.ResolveStream(ctx, track); err != nil || stream != path {
		t.Fatalf("stream = %q, %v", stream, err)
	}
}

func TestResolveInputRejectsNonWebSchemes(t *testing.T) {
	res := &stubResolver{}
	svc := NewService(res, nil)

	for _, in := range []string{"file://localhost/etc/hostname", "ftp://example.com/a.mp3"} {
		if _, err := svc.ResolveInput(context.Background(), in, TrackSourceUnknown); !errors.Is(err, ErrUnsupportedInput) {
			t.Errorf("ResolveInput(%q) err = %v, want ErrUnsupportedInput", in, err)
		}
	}
	if len(res.inputs) != 0 {
		t.Fatalf("resolver reached with %v", res.inputs)
	}
}
