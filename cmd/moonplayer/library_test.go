package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
)

func TestRenderTracks(t *testing.T) {
	var buf bytes.Buffer
	renderTracks(&buf, "History", nil)
	if got := buf.String(); got != "History: empty\n" {
		t.Fatalf("empty = %q", got)
	}

	buf.Reset()
	renderTracks(&buf, "Favorites", []music.Track{
		{ID: "1", Title: "Moonlight", Artist: "Nova", Source: music.TrackSourceYouTube, Duration: 185 * time.Second},
		{ID: "2", Title: "Radio", Source: music.TrackSourceSoundCloud},
	})

	out := buf.String()
	for _, want := range []string{"Favorites", "Moonlight", "Nova", "03:05", "live"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}
