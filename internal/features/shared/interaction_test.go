package shared

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/music"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"longer text", 6, "longe…"},
		{"한국어 제목", 3, "한국…"},
		{"ab", 1, "a"},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestDetectSourceHint(t *testing.T) {
	tests := map[string]music.TrackSource{
		"https://open.spotify.com/track/abc": music.TrackSourceSpotify,
		"spotify:track:abc":                  music.TrackSourceSpotify,
		"https://soundcloud.com/a/b":         music.TrackSourceSoundCloud,
		"https://youtu.be/xyz":               music.TrackSourceYouTube,
		"lofi beats":                         music.TrackSourceUnknown,
	}
	for in, want := range tests {
		if got := DetectSourceHint(in); got != want {
			t.Errorf("DetectSourceHint(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseProviderHint(t *testing.T) {
	if got := ParseProviderHint(" SC "); got != music.TrackSourceSoundCloud {
		t.Fatalf("got %s", got)
	}
	if got := ParseProviderHint("auto"); got != music.TrackSourceUnknown {
		t.Fatalf("got %s", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(185 * time.Second); got != "03:05" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDuration(0); got != "live" {
		t.Fatalf("got %q", got)
	}
}

func TestTrackLine(t *testing.T) {
	got := TrackLine(music.Track{Title: "a_b", Artist: "C", URL: "https://x"})
	if got != "[a\\_b - C](https://x)" {
		t.Fatalf("got %q", got)
	}
	if got := TrackLine(music.Track{}); got != "Unknown title" {
		t.Fatalf("got %q", got)
	}
}

func TestGetInteractionUserID(t *testing.T) {
	member := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "m"}},
	}}
	direct := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "u"},
	}}

	if got := GetInteractionUserID(member); got != "m" {
		t.Fatalf("member id = %q", got)
	}
	if got := GetInteractionUserID(direct); got != "u" {
		t.Fatalf("user id = %q", got)
	}
	if got := GetInteractionUserID(nil); got != "" {
		t.Fatalf("nil id = %q", got)
	}
}

func TestGetOptionBool(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "enabled", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
	}
	if v, ok := GetOptionBool(opts, "enabled"); !v || !ok {
		t.Fatalf("got %v, %v", v, ok)
	}
	if _, ok := GetOptionBool(opts, "missing"); ok {
		t.Fatal("missing option reported as given")
	}
}
