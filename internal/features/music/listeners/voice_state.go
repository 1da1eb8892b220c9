package listeners

import (
	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

// HandleVoiceStateUpdate stops the guild's session once the bot is the
// only member left in its voice channel.
func HandleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate, d shared.Deps) {
	if s == nil || vs == nil || vs.GuildID == "" || s.State == nil || s.State.User == nil {
		return
	}

	p, ok := d.Players.Lookup(vs.GuildID)
	if !ok || !p.HasVoiceConnection() {
		return
	}

	guild := getGuildWithVoiceStates(s, vs.GuildID)
	if guild == nil || !aloneInChannel(guild.VoiceStates, s.State.User.ID, p.ChannelID()) {
		return
	}

	d.Players.Remove(vs.GuildID)
	d.RefreshDashboard(s, vs.GuildID)
	log.WithField("guild", vs.GuildID).Info("voice channel empty, session stopped")

	channelID, ok := d.DashboardChannel(vs.GuildID)
	if !ok || channelID == "" {
		return
	}
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Components: shared.NoticeComponents("🔇 Stopped", "Everyone left the voice channel, so playback stopped."),
		Flags:      discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		log.Printf("failed to send voice-empty notice: %v", err)
	}
}

// aloneInChannel reports whether botID is the only user in channelID.
func aloneInChannel(states []*discordgo.VoiceState, botID, channelID string) bool {
	if channelID == "" {
		return false
	}
	for _, state := range states {
		if state.ChannelID == channelID && state.UserID != botID {
			return false
		}
	}
	return true
}

func getGuildWithVoiceStates(s *discordgo.Session, guildID string) *discordgo.Guild {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g
		}
	}
	g, err := s.Guild(guildID)
	if err != nil {
		return nil
	}
	return g
}
