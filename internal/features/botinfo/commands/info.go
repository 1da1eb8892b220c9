package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/botinfo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
)

func Info(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	botinfo.RespondBotInfo(s, i, d)
}
