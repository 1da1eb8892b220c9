package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/ping"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
)

func Ping(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ping.RespondPing(s, i, d, discordgo.InteractionResponseChannelMessageWithSource)
}
