package actions

import (
	"context"
	"errors"
	"fmt"
	"testing"

	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	"github.com/hxnx/moonplayer/internal/player"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNoGuild, "This only works inside a server."},
		{player.ErrNoVoiceChannel, "Join a voice channel first."},
		{fmt.Errorf("%w: no search results", music.ErrResolveFailed), "I could not find a playable source for that."},
		{fmt.Errorf("%w: boom", playback.ErrLoadFailure), "The track could not be opened."},
		{playback.ErrPlaylistEmpty, "The playlist is empty."},
		{playback.ErrNotStarted, "The track is still loading."},
		{music.ErrUnsupportedInput, "Only http and https links are supported."},
		{errors.New("surprise"), "Something went wrong. Try again in a moment."},
	}
	for _, tt := range tests {
		if got := ErrorMessage(tt.err); got != tt.want {
			t.Errorf("ErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestControlsWithoutPlayer(t *testing.T) {
	d := shared.Deps{Players: player.NewManager(context.Background(), player.Options{})}
	t.Cleanup(d.Players.Shutdown)

	if _, err := TogglePause(nil, d, "g1"); !errors.Is(err, playback.ErrNothingLoaded) {
		t.Fatalf("TogglePause err = %v", err)
	}
	if _, err := Step(nil, d, "", 1); !errors.Is(err, ErrNoGuild) {
		t.Fatalf("Step err = %v", err)
	}
	if _, ok := d.Players.Lookup("g1"); ok {
		t.Fatal("controls created a player")
	}
}

func TestResolveWithoutService(t *testing.T) {
	d := shared.Deps{Players: player.NewManager(context.Background(), player.Options{})}

	if _, err := Resolve(context.Background(), d, "lofi", music.TrackSourceUnknown); !errors.Is(err, music.ErrResolverNil) {
		t.Fatalf("err = %v, want ErrResolverNil", err)
	}
}

func TestSetAutoPlayCreatesPlayer(t *testing.T) {
	d := shared.Deps{Players: player.NewManager(context.Background(), player.Options{})}
	t.Cleanup(d.Players.Shutdown)

	msg, err := SetAutoPlay(nil, d, "g1", true)
	if err != nil || msg != "🔁 Auto-play is **on**." {
		t.Fatalf("SetAutoPlay = %q, %v", msg, err)
	}
	p, ok := d.Players.Lookup("g1")
	if !ok || !p.Controller().AutoPlay() {
		t.Fatal("auto-play not applied")
	}
}
