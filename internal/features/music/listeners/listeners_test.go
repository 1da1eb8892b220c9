package listeners

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/music"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		values []string
		n      int
		want   int
		ok     bool
	}{
		{[]string{"2"}, 5, 2, true},
		{[]string{"5"}, 5, 0, false},
		{[]string{"-1"}, 5, 0, false},
		{[]string{"x"}, 5, 0, false},
		{nil, 5, 0, false},
	}

	for _, tt := range tests {
		got, ok := parseIndex(tt.values, tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseIndex(%v, %d) = %d, %v", tt.values, tt.n, got, ok)
		}
	}
}

func TestAloneInChannel(t *testing.T) {
	states := []*discordgo.VoiceState{
		{UserID: "bot", ChannelID: "c1"},
		{UserID: "u1", ChannelID: "c2"},
	}
	if !aloneInChannel(states, "bot", "c1") {
		t.Fatal("bot should be alone in c1")
	}

	states = append(states, &discordgo.VoiceState{UserID: "u2", ChannelID: "c1"})
	if aloneInChannel(states, "bot", "c1") {
		t.Fatal("u2 shares c1 with the bot")
	}
	if aloneInChannel(states, "bot", "") {
		t.Fatal("no channel is never alone")
	}
}

func TestResolveSourceHintDefaultsToYouTube(t *testing.T) {
	if got := resolveSourceHint("lofi"); got != music.TrackSourceYouTube {
		t.Fatalf("got %s", got)
	}
	if got := resolveSourceHint("https://soundcloud.com/a/b"); got != music.TrackSourceSoundCloud {
		t.Fatalf("got %s", got)
	}
}
