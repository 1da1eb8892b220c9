package listeners

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	dashboard "github.com/hxnx/moonplayer/internal/features/dashboard"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	search "github.com/hxnx/moonplayer/internal/features/music/search"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
	log "github.com/sirupsen/logrus"
)

const dashboardAutoDeleteDelay = 30 * time.Second

// HandleMusicMessage treats plain messages in the dashboard channel as
// searches. Requests and replies are removed after a short delay.
func HandleMusicMessage(s *discordgo.Session, m *discordgo.MessageCreate, d shared.Deps) {
	if s == nil || m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if !isDashboardChannel(s, d, m.GuildID, m.ChannelID) {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}
	scheduleDelete(s, m.ChannelID, m.ID, dashboardAutoDeleteDelay)
	if strings.HasPrefix(content, "/") {
		return
	}

	reply := func(components []discordgo.MessageComponent) {
		sent, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2,
			Reference:  &discordgo.MessageReference{MessageID: m.ID, ChannelID: m.ChannelID, GuildID: m.GuildID},
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse:       []discordgo.AllowedMentionType{},
				RepliedUser: false,
			},
		})
		if err != nil {
			log.WithField("guild", m.GuildID).Debugf("dashboard reply failed: %v", err)
			return
		}
		scheduleDelete(s, m.ChannelID, sent.ID, dashboardAutoDeleteDelay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), actions.ResolveTimeout)
	defer cancel()

	results, err := actions.Search(ctx, d, content, resolveSourceHint(content), search.MaxResults)
	if err != nil {
		reply(shared.NoticeComponents("Search failed", actions.ErrorMessage(err)))
		return
	}

	search.DefaultStore.Save(search.Session{
		GuildID: m.GuildID,
		UserID:  m.Author.ID,
		Query:   content,
		Results: results,
	})
	reply(search.BuildSearchComponents(content, results))
}

func isDashboardChannel(s *discordgo.Session, d shared.Deps, guildID, channelID string) bool {
	if dashboardChannel, ok := d.DashboardChannel(guildID); ok && dashboardChannel != "" {
		return dashboardChannel == channelID
	}
	ch, err := s.State.Channel(channelID)
	if err != nil {
		ch, err = s.Channel(channelID)
	}
	return err == nil && ch != nil && ch.Name == dashboard.DefaultChannelName
}

// resolveSourceHint searches YouTube unless the text names another provider.
func resolveSourceHint(input string) music.TrackSource {
	hint := shared.DetectSourceHint(input)
	if hint == music.TrackSourceUnknown {
		return music.TrackSourceYouTube
	}
	return hint
}

func scheduleDelete(s *discordgo.Session, channelID, messageID string, delay time.Duration) {
	if s == nil || channelID == "" || messageID == "" {
		return
	}
	time.AfterFunc(delay, func() {
		_ = s.ChannelMessageDelete(channelID, messageID)
	})
}
