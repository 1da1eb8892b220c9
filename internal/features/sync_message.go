package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const syncCommand = "!sync"

// HandleSyncMessage registers the slash commands on the current guild when
// the bot owner sends !sync. It reports whether the message was consumed.
func HandleSyncMessage(s *discordgo.Session, m *discordgo.MessageCreate, ownerID string) bool {
	if s == nil || m == nil || m.Author == nil {
		return false
	}
	if m.Author.Bot || m.GuildID == "" {
		return false
	}
	if strings.TrimSpace(m.Content) != syncCommand {
		return false
	}

	if ownerID == "" || m.Author.ID != ownerID {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Only the bot owner can sync commands.")
		return true
	}

	appID := ""
	if s.State != nil && s.State.User != nil {
		appID = s.State.User.ID
	}
	if appID == "" {
		_, _ = s.ChannelMessageSend(m.ChannelID, "Sync failed: application ID is unknown.")
		return true
	}

	if _, err := RegisterCommands(s, appID, m.GuildID); err != nil {
		log.WithField("guild", m.GuildID).Errorf("command sync failed: %v", err)
		_, _ = s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Sync failed: %v", err))
		return true
	}

	_, _ = s.ChannelMessageSend(m.ChannelID, "Slash commands synced to this server.")
	return true
}
