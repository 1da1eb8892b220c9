package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/ping"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
)

func RoutePingComponent(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "ping_") {
		return false
	}

	if customID == ping.RefreshCustomID {
		ping.RespondPing(s, i, d, discordgo.InteractionResponseUpdateMessage)
	}
	return true
}
