package search

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/music"
)

func TestStoreExpiresSessions(t *testing.T) {
	now := time.Unix(1700000000, 0)
	st := NewStore()
	st.now = func() time.Time { return now }

	st.Save(Session{GuildID: "g", UserID: "u", Query: "q", Results: []music.Track{{ID: "a"}}})
	if s, ok := st.Get("g", "u"); !ok || s.Query != "q" {
		t.Fatalf("Get = %+v, %v", s, ok)
	}

	now = now.Add(SearchSessionTTL + time.Second)
	if _, ok := st.Get("g", "u"); ok {
		t.Fatal("expired session returned")
	}
}

func TestStoreIgnoresAnonymousSessions(t *testing.T) {
	st := NewStore()
	st.Save(Session{GuildID: "g"})
	if len(st.data) != 0 {
		t.Fatal("saved a session without a user")
	}
}

func TestBuildSearchComponents(t *testing.T) {
	results := []music.Track{
		{ID: "a", Title: "First", Source: music.TrackSourceYouTube, Duration: 90 * time.Second},
		{ID: "b", Title: "Second", Source: music.TrackSourceSoundCloud},
	}

	components := BuildSearchComponents("lofi", results)
	container := components[0].(discordgo.Container)
	row := container.Components[4].(discordgo.ActionsRow)
	menu := row.Components[0].(discordgo.SelectMenu)

	if menu.CustomID != SearchCustomIDPrefix || len(menu.Options) != 2 {
		t.Fatalf("menu = %+v", menu)
	}
	if menu.Options[1].Value != "1" || menu.Options[0].Description != "youtube • 01:30" {
		t.Fatalf("options = %+v", menu.Options)
	}
	if got := container.Components[2].(discordgo.TextDisplay).Content; got != "1. **First** [01:30]\n2. **Second** [live]" {
		t.Fatalf("summary = %q", got)
	}
}
