package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
)

func RouteMusicComponent(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "music_") {
		return false
	}

	HandleMusicComponent(s, i, d)
	return true
}
