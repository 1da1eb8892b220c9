// Package botinfo renders the /info card: process health plus the state of
// the guild sessions.
package botinfo

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

var botStartedAt = time.Now()

type Info struct {
	Latency  time.Duration
	Guilds   int
	Shards   int
	Uptime   time.Duration
	MemoryMB float64
	Players  int
	Active   int
}

func Collect(s *discordgo.Session, d shared.Deps, now time.Time) Info {
	info := Info{
		Latency: s.HeartbeatLatency().Round(time.Millisecond),
		Shards:  max(1, s.ShardCount),
		Uptime:  now.Sub(botStartedAt).Round(time.Second),
	}
	if s.State != nil {
		info.Guilds = len(s.State.Guilds)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	info.MemoryMB = float64(mem.Alloc) / 1024.0 / 1024.0

	if d.Players != nil {
		info.Players = len(d.Players.Players())
		info.Active = d.Players.ActiveCount()
	}
	return info
}

func BuildBotInfoComponents(info Info, now time.Time) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "**🌙 MoonPlayer**"},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.Section{
					Components: []discordgo.MessageComponent{
						discordgo.TextDisplay{Content: fmt.Sprintf("**Latency:** %s", info.Latency)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**Servers:** %d • **Shards:** %d", info.Guilds, info.Shards)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**Sessions:** %d active of %d", info.Active, info.Players)},
						discordgo.TextDisplay{Content: fmt.Sprintf("**Uptime:** %s • **Memory:** %.2f MB", info.Uptime, info.MemoryMB)},
					},
				},
				discordgo.TextDisplay{Content: fmt.Sprintf("Updated <t:%d:R>", now.Unix())},
			},
		},
	}
}

func RespondBotInfo(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if s == nil || i == nil {
		return
	}

	now := time.Now()
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: BuildBotInfoComponents(Collect(s, d, now), now),
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("failed to respond to bot info: %v", err)
	}
}
