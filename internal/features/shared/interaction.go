package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/player"
	log "github.com/sirupsen/logrus"
)

var AccentColor = 0xC9A0FF

const maxContentLength = 2000

// DashboardRefresher redraws a guild's dashboard message after a command
// changed the session.
type DashboardRefresher interface {
	Refresh(s *discordgo.Session, guildID string)
	Channel(guildID string) (string, bool)
}

// Deps is what interaction handlers need from the running bot.
type Deps struct {
	Players   *player.Manager
	Dashboard DashboardRefresher
}

func (d Deps) RefreshDashboard(s *discordgo.Session, guildID string) {
	if d.Dashboard == nil || guildID == "" {
		return
	}
	d.Dashboard.Refresh(s, guildID)
}

// DashboardChannel returns the channel holding the guild's dashboard.
func (d Deps) DashboardChannel(guildID string) (string, bool) {
	if d.Dashboard == nil || guildID == "" {
		return "", false
	}
	return d.Dashboard.Channel(guildID)
}

// NoticeComponents renders a titled Components V2 notice.
func NoticeComponents(title, content string) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &AccentColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: title},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.TextDisplay{Content: Truncate(content, maxContentLength)},
			},
		},
	}
}

func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	RespondComponents(s, i, NoticeComponents("Notice", content), true)
}

func RespondComponents(s *discordgo.Session, i *discordgo.InteractionCreate, components []discordgo.MessageComponent, ephemeral bool) {
	if s == nil || i == nil {
		return
	}

	flags := discordgo.MessageFlagsIsComponentsV2
	if ephemeral {
		flags |= discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      flags,
		},
	})
	if err != nil {
		log.Printf("failed to respond: %v", err)
	}
}

// UpdateComponents replaces the message a component interaction came from.
func UpdateComponents(s *discordgo.Session, i *discordgo.InteractionCreate, components []discordgo.MessageComponent) {
	if s == nil || i == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2,
		},
	})
	if err != nil {
		log.Printf("failed to update message: %v", err)
	}
}

func DeferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if s == nil || i == nil {
		return nil
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	FollowupComponents(s, i, NoticeComponents("Notice", content), true)
}

func FollowupComponents(s *discordgo.Session, i *discordgo.InteractionCreate, components []discordgo.MessageComponent, ephemeral bool) {
	if s == nil || i == nil {
		return
	}

	flags := discordgo.MessageFlagsIsComponentsV2
	if ephemeral {
		flags |= discordgo.MessageFlagsEphemeral
	}

	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Components: components,
		Flags:      flags,
	})
	if err != nil {
		log.Printf("followup failed: %v", err)
	}
}

func GetOptionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func GetOptionInt64(options []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, opt := range options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}

// GetOptionBool reports the option value and whether it was given.
func GetOptionBool(options []*discordgo.ApplicationCommandInteractionDataOption, name string) (bool, bool) {
	for _, opt := range options {
		if opt.Name == name {
			return opt.BoolValue(), true
		}
	}
	return false, false
}

func GetInteractionUserID(i *discordgo.InteractionCreate) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func DetectSourceHint(input string) music.TrackSource {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(lower, "spotify.com") || strings.HasPrefix(lower, "spotify:track:"):
		return music.TrackSourceSpotify
	case strings.Contains(lower, "soundcloud.com"):
		return music.TrackSourceSoundCloud
	case strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be"):
		return music.TrackSourceYouTube
	default:
		return music.TrackSourceUnknown
	}
}

func ParseProviderHint(provider string) music.TrackSource {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "youtube", "yt":
		return music.TrackSourceYouTube
	case "spotify", "sp":
		return music.TrackSourceSpotify
	case "soundcloud", "sc":
		return music.TrackSourceSoundCloud
	default:
		return music.TrackSourceUnknown
	}
}

func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "live"
	}
	totalSeconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

func EscapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"~", "\\~",
		"|", "\\|",
		">", "\\>",
	)
	return replacer.Replace(text)
}

// Truncate cuts text to max runes, marking the cut with an ellipsis.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// TrackLine renders a track as a markdown link when it has a URL.
func TrackLine(track music.Track) string {
	title := strings.TrimSpace(track.DisplayName())
	if title == "" {
		title = "Unknown title"
	}
	title = EscapeMarkdown(Truncate(title, 80))
	if track.URL != "" {
		return fmt.Sprintf("[%s](%s)", title, track.URL)
	}
	return title
}
