package listeners

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/music"
)

func submitData(query, provider string) discordgo.ModalSubmitInteractionData {
	return discordgo.ModalSubmitInteractionData{
		CustomID: searchModalID,
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: searchInputID, Value: query},
			}},
			&discordgo.Label{Component: &discordgo.SelectMenu{
				CustomID: searchProviderInputID,
				Values:   []string{provider},
			}},
		},
	}
}

func TestParseSearchSubmit(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		provider string
		hint     music.TrackSource
		ok       bool
	}{
		{"auto detects spotify", " https://open.spotify.com/track/x ", "auto", music.TrackSourceSpotify, true},
		{"explicit provider wins", "lofi", "soundcloud", music.TrackSourceSoundCloud, true},
		{"auto plain query", "lofi", "auto", music.TrackSourceUnknown, true},
		{"unsupported provider", "lofi", "bandcamp", music.TrackSourceUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, hint, ok := parseSearchSubmit(submitData(tt.query, tt.provider))
			if ok != tt.ok || hint != tt.hint {
				t.Fatalf("got hint %s ok %v, want %s %v", hint, ok, tt.hint, tt.ok)
			}
			if ok && query == "" {
				t.Fatal("query was dropped")
			}
		})
	}
}
