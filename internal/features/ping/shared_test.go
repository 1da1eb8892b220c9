package ping

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestBuildPingComponents(t *testing.T) {
	stats := Stats{
		HeartbeatLatency: 42 * time.Millisecond,
		GatewayLatency:   50 * time.Millisecond,
		Guilds:           3,
		Shards:           1,
		ActiveSessions:   2,
	}

	components := BuildPingComponents(stats, time.Unix(1700000000, 0))
	container, ok := components[0].(discordgo.Container)
	if !ok {
		t.Fatalf("first component is %T", components[0])
	}

	section, ok := container.Components[2].(discordgo.Section)
	if !ok {
		t.Fatalf("third component is %T", container.Components[2])
	}
	summary := section.Components[2].(discordgo.TextDisplay).Content
	if !strings.Contains(summary, "**Playing in:** 2") {
		t.Fatalf("summary = %q", summary)
	}
	if button := section.Accessory.(discordgo.Button); button.CustomID != RefreshCustomID {
		t.Fatalf("accessory = %q", button.CustomID)
	}

	footer := container.Components[3].(discordgo.TextDisplay).Content
	if footer != "Updated <t:1700000000:R>" {
		t.Fatalf("footer = %q", footer)
	}
}
