package ping

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

const RefreshCustomID = "ping_refresh"

type Stats struct {
	HeartbeatLatency time.Duration
	GatewayLatency   time.Duration
	Guilds           int
	Shards           int
	ActiveSessions   int
}

func CollectStats(s *discordgo.Session, d shared.Deps) Stats {
	latency := s.HeartbeatLatency().Round(time.Millisecond)
	stats := Stats{
		HeartbeatLatency: latency,
		GatewayLatency:   latency,
		Shards:           max(1, s.ShardCount),
	}
	if !s.LastHeartbeatAck.IsZero() {
		stats.GatewayLatency = time.Since(s.LastHeartbeatAck).Round(time.Millisecond)
	}
	if s.State != nil {
		stats.Guilds = len(s.State.Guilds)
	}
	if d.Players != nil {
		stats.ActiveSessions = d.Players.ActiveCount()
	}
	return stats
}

func BuildPingComponents(stats Stats, now time.Time) []discordgo.MessageComponent {
	colorLilac := 0xC8A2C8
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &colorLilac,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "**Pong!**"},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.Section{
					Components: []discordgo.MessageComponent{
						discordgo.TextDisplay{Content: fmt.Sprintf("**API latency:** %s", stats.HeartbeatLatency)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**Gateway latency:** %s", stats.GatewayLatency)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**Servers:** %d • **Shards:** %d • **Playing in:** %d", stats.Guilds, stats.Shards, stats.ActiveSessions)},
					},
					Accessory: discordgo.Button{
						Style:    discordgo.PrimaryButton,
						Label:    "Refresh",
						CustomID: RefreshCustomID,
					},
				},
				discordgo.TextDisplay{Content: fmt.Sprintf("Updated <t:%d:R>", now.Unix())},
			},
		},
	}
}

func RespondPing(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps, respType discordgo.InteractionResponseType) {
	if s == nil || i == nil {
		return
	}

	components := BuildPingComponents(CollectStats(s, d), time.Now())

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: respType,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("failed to respond to ping: %v", err)
	}
}
