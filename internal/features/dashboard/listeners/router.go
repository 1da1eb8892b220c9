package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
)

func RouteDashboardComponent(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) bool {
	switch i.Type {
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == searchModalID {
			handleSearchSubmit(s, i, d)
			return true
		}
		return false
	case discordgo.InteractionMessageComponent:
	default:
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "dashboard_") {
		return false
	}

	HandleDashboardComponent(s, i, d)
	return true
}
