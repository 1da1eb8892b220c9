package botinfo

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestBuildBotInfoComponents(t *testing.T) {
	info := Info{Latency: 42 * time.Millisecond, Guilds: 3, Shards: 1, Players: 2, Active: 1, Uptime: time.Hour}
	comps := BuildBotInfoComponents(info, time.Unix(100, 0))

	container, ok := comps[0].(discordgo.Container)
	if !ok {
		t.Fatalf("got %T", comps[0])
	}
	section := container.Components[2].(discordgo.Section)

	var text []string
	for _, c := range section.Components {
		text = append(text, c.(discordgo.TextDisplay).Content)
	}
	joined := strings.Join(text, "\n")
	for _, want := range []string{"42ms", "**Servers:** 3", "1 active of 2", "1h0m0s"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in %q", want, joined)
		}
	}

	last := container.Components[3].(discordgo.TextDisplay)
	if last.Content != "Updated <t:100:R>" {
		t.Fatalf("footer = %q", last.Content)
	}
}
