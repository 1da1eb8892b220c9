package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	dashboard "github.com/hxnx/moonplayer/internal/features/dashboard"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

// SetupDashboard creates or reuses the dashboard channel and posts a fresh
// dashboard message in it.
func SetupDashboard(s *discordgo.Session, i *discordgo.InteractionCreate, u *dashboard.Updater) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This only works inside a server.")
		return
	}

	if !hasManageChannelsPermission(i) {
		shared.RespondEphemeral(s, i, "You need the Manage Channels permission for this.")
		return
	}

	categoryID, channelName := parseSetupOptions(i)
	if channelName == "" {
		channelName = dashboard.DefaultChannelName
	}

	channelID := ""
	if categoryID == "" && channelName == dashboard.DefaultChannelName {
		if existing, ok := u.Channel(i.GuildID); ok {
			if _, err := s.Channel(existing); err == nil {
				channelID = existing
			}
		}
	}

	if channelID == "" {
		channels, err := s.GuildChannels(i.GuildID)
		if err == nil {
			channelID = findTextChannel(channels, channelName, categoryID)
		}
	}

	if channelID == "" {
		channel, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
			Name:     channelName,
			Type:     discordgo.ChannelTypeGuildText,
			ParentID: categoryID,
		})
		if err != nil {
			log.Printf("failed to create dashboard channel: %v", err)
			shared.RespondEphemeral(s, i, "Could not create the dashboard channel.")
			return
		}
		channelID = channel.ID
	}

	if err := u.DeletePrevious(s, i.GuildID); err != nil {
		log.Debugf("failed to delete previous dashboard message: %v", err)
	}

	dashboardMessage, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Components: u.Components(i.GuildID),
		Flags:      discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		log.Printf("failed to send dashboard message: %v", err)
		shared.RespondEphemeral(s, i, "Could not post the dashboard message.")
		return
	}

	u.SetEntry(i.GuildID, dashboard.Entry{
		ChannelID: channelID,
		MessageID: dashboardMessage.ID,
	})

	log.WithFields(log.Fields{"guild": i.GuildID, "channel": channelID}).Info("dashboard set up")
	shared.RespondEphemeral(s, i, fmt.Sprintf("Dashboard is ready in <#%s>.\nType a song name there to search.", channelID))
}

func findTextChannel(channels []*discordgo.Channel, name, categoryID string) string {
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText || ch.Name != name {
			continue
		}
		if categoryID == "" || ch.ParentID == categoryID {
			return ch.ID
		}
	}
	return ""
}

func parseSetupOptions(i *discordgo.InteractionCreate) (string, string) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return "", ""
	}

	data := i.ApplicationCommandData()
	var categoryID string
	var channelName string

	for _, opt := range data.Options {
		switch opt.Name {
		case "category":
			categoryID = opt.StringValue()
		case "channel_name":
			channelName = opt.StringValue()
		}
	}

	return categoryID, channelName
}

func hasManageChannelsPermission(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}

	perms := i.Member.Permissions
	return perms&discordgo.PermissionManageChannels != 0
}
