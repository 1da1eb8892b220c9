package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	"github.com/hxnx/moonplayer/internal/player"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{0, "◉────"},
		{0.5, "━━◉──"},
		{1, "━━━━◉"},
		{2, "━━━━◉"},
		{-1, "◉────"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.fraction, 4); got != tt.want {
			t.Errorf("ProgressBar(%v) = %q, want %q", tt.fraction, got, tt.want)
		}
	}
}

func texts(components []discordgo.MessageComponent) []string {
	var out []string
	for _, c := range components {
		switch v := c.(type) {
		case discordgo.Container:
			out = append(out, texts(v.Components)...)
		case discordgo.Section:
			out = append(out, texts(v.Components)...)
		case discordgo.TextDisplay:
			out = append(out, v.Content)
		}
	}
	return out
}

func buttons(components []discordgo.MessageComponent) map[string]discordgo.Button {
	out := map[string]discordgo.Button{}
	for _, c := range components {
		switch v := c.(type) {
		case discordgo.Container:
			for k, b := range buttons(v.Components) {
				out[k] = b
			}
		case discordgo.ActionsRow:
			for _, inner := range v.Components {
				if b, ok := inner.(discordgo.Button); ok {
					out[b.CustomID] = b
				}
			}
		}
	}
	return out
}

func TestBuildComponentsPlaying(t *testing.T) {
	v := View{
		Snapshot: playback.Snapshot{
			State:    playback.StatePlaying,
			Track:    music.Track{ID: "a", Title: "Song", Artist: "Band", Source: music.TrackSourceYouTube},
			HasTrack: true,
			Progress: playback.Progress{Elapsed: 65 * time.Second, Total: 185 * time.Second},
			AutoPlay: true,
			Cursor:   1,
			Length:   3,
		},
		VoiceConnected: true,
	}

	components := BuildComponents(v)
	all := strings.Join(texts(components), "\n")

	for _, want := range []string{"Song - Band", "01:05 / 03:05", "YouTube", "▶️ **Playing**", "Auto-play **on**", "Playlist **2/3**"} {
		if !strings.Contains(all, want) {
			t.Errorf("dashboard missing %q:\n%s", want, all)
		}
	}

	b := buttons(components)
	if b[CustomIDPause].Label != "Pause" {
		t.Errorf("pause label = %q", b[CustomIDPause].Label)
	}
	if b[CustomIDJoin].Label != "Leave" {
		t.Errorf("join label = %q", b[CustomIDJoin].Label)
	}
	if b[CustomIDNext].Disabled {
		t.Error("next disabled with a playlist")
	}
}

func TestBuildComponentsEmpty(t *testing.T) {
	components := BuildComponents(View{Snapshot: emptySnapshot()})
	all := strings.Join(texts(components), "\n")

	if !strings.Contains(all, "Nothing is playing") || !strings.Contains(all, "Stopped") {
		t.Fatalf("unexpected dashboard:\n%s", all)
	}

	b := buttons(components)
	if !b[CustomIDPause].Disabled || !b[CustomIDFavorite].Disabled || !b[CustomIDPrev].Disabled {
		t.Fatal("track buttons enabled without a track")
	}
	if b[CustomIDPause].Label != "Resume" {
		t.Errorf("pause label = %q", b[CustomIDPause].Label)
	}
}

func TestRenderHashBucketsProgress(t *testing.T) {
	base := View{Snapshot: playback.Snapshot{
		State:    playback.StatePlaying,
		Track:    music.Track{ID: "a", Source: music.TrackSourceYouTube},
		HasTrack: true,
		Progress: playback.Progress{Elapsed: 11 * time.Second, Total: time.Minute},
	}}
	later := base
	later.Snapshot.Progress.Elapsed = 14 * time.Second
	next := base
	next.Snapshot.Progress.Elapsed = 16 * time.Second
	paused := base
	paused.Snapshot.State = playback.StatePaused

	h := renderHash(base, progressBucket)
	if renderHash(later, progressBucket) != h {
		t.Error("hash changed within one bucket")
	}
	if renderHash(next, progressBucket) == h {
		t.Error("hash unchanged across buckets")
	}
	if renderHash(paused, progressBucket) == h {
		t.Error("hash unchanged after pause")
	}
}

func TestUpdaterStaleTracksRenderedState(t *testing.T) {
	players := player.NewManager(context.Background(), player.Options{})
	t.Cleanup(players.Shutdown)

	u := NewUpdater(players, nil)
	u.entries["g1"] = Entry{ChannelID: "c", MessageID: "m"}

	if got := u.stale(); len(got) != 1 || got[0] != "g1" {
		t.Fatalf("stale = %v, want [g1]", got)
	}

	u.rendered["g1"] = renderHash(u.view("g1"), progressBucket)
	if got := u.stale(); len(got) != 0 {
		t.Fatalf("stale = %v after render", got)
	}

	players.Get("g1").Controller().SetAutoPlay(true)
	if got := u.stale(); len(got) != 1 {
		t.Fatalf("stale = %v after auto-play change", got)
	}
}

func TestUpdaterEntryWithoutRepository(t *testing.T) {
	u := NewUpdater(nil, nil)
	if _, ok := u.Entry("g1"); ok {
		t.Fatal("entry found without repository")
	}

	u.SetEntry("g1", Entry{ChannelID: "c", MessageID: "m"})
	if e, ok := u.Entry("g1"); !ok || e.MessageID != "m" {
		t.Fatalf("entry = %+v, %v", e, ok)
	}

	u.ClearEntry("g1")
	if _, ok := u.Entry("g1"); ok {
		t.Fatal("entry survived ClearEntry")
	}
}
