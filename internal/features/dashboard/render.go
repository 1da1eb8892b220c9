package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
)

const (
	CustomIDJoin     = "dashboard_join"
	CustomIDSearch   = "dashboard_search"
	CustomIDPrev     = "dashboard_prev"
	CustomIDPause    = "dashboard_pause"
	CustomIDNext     = "dashboard_next"
	CustomIDAutoPlay = "dashboard_autoplay"
	CustomIDFavorite = "dashboard_favorite"
	CustomIDQueue    = "dashboard_queue"
	CustomIDStop     = "dashboard_stop"

	progressBarSize = 12
	accentColor     = 0x3C6AA1
)

// View is what one dashboard render shows.
type View struct {
	Snapshot       playback.Snapshot
	VoiceConnected bool
}

func stateLabel(s playback.State) string {
	switch s {
	case playback.StateLoading:
		return "⏳ **Loading**"
	case playback.StatePlaying:
		return "▶️ **Playing**"
	case playback.StatePaused:
		return "⏸️ **Paused**"
	case playback.StateStalled:
		return "⏯️ **Seeking**"
	case playback.StateCompleted:
		return "✅ **Finished**"
	default:
		return "⏹️ **Stopped**"
	}
}

func sourceLabel(source music.TrackSource) string {
	switch source {
	case music.TrackSourceYouTube:
		return "YouTube"
	case music.TrackSourceSpotify:
		return "Spotify"
	case music.TrackSourceSoundCloud:
		return "SoundCloud"
	case music.TrackSourceLocal:
		return "Local file"
	case "", music.TrackSourceUnknown:
		return "Unknown"
	default:
		return strings.ToUpper(string(source))
	}
}

// ProgressBar draws a fixed-width bar with a marker at fraction.
func ProgressBar(fraction float64, size int) string {
	if size <= 0 {
		size = progressBarSize
	}
	fraction = max(0.0, min(1.0, fraction))
	marker := min(size, max(0, int(fraction*float64(size))))
	return strings.Repeat("━", marker) + "◉" + strings.Repeat("─", size-marker)
}

// BuildComponents renders the dashboard message.
func BuildComponents(v View) []discordgo.MessageComponent {
	accent := accentColor
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall
	snap := v.Snapshot

	components := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "🌙 **MoonPlayer**"},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}

	nowPlaying := []discordgo.MessageComponent{}
	if snap.HasTrack {
		nowPlaying = append(nowPlaying,
			discordgo.TextDisplay{Content: "🎧 **" + shared.TrackLine(snap.Track) + "**"},
			discordgo.TextDisplay{Content: fmt.Sprintf("`%s` `%s`", snap.Progress.Label(), ProgressBar(snap.Progress.Fraction(), progressBarSize))},
			discordgo.TextDisplay{Content: fmt.Sprintf("🎵 %s", sourceLabel(snap.Track.Source))},
		)
	} else {
		nowPlaying = append(nowPlaying, discordgo.TextDisplay{Content: "🟡 **Nothing is playing**"})
	}

	if thumb := strings.TrimSpace(snap.Track.Thumbnail); snap.HasTrack && thumb != "" {
		components = append(components, discordgo.Section{
			Components: nowPlaying,
			Accessory: discordgo.Thumbnail{
				Media: discordgo.UnfurledMediaItem{URL: thumb},
			},
		})
	} else {
		components = append(components, nowPlaying...)
	}

	autoPlay := "off"
	if snap.AutoPlay {
		autoPlay = "on"
	}
	position := "-"
	if snap.Cursor >= 0 && snap.Length > 0 {
		position = fmt.Sprintf("%d/%d", snap.Cursor+1, snap.Length)
	}

	components = append(components,
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
		discordgo.TextDisplay{Content: fmt.Sprintf("%s • 🔁 Auto-play **%s** • 📋 Playlist **%s**", stateLabel(snap.State), autoPlay, position)},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	)
	components = append(components, buildButtons(v)...)

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &accent,
			Components:  components,
		},
	}
}

func buildButtons(v View) []discordgo.MessageComponent {
	snap := v.Snapshot

	pauseLabel := "Pause"
	pauseStyle := discordgo.SecondaryButton
	if snap.State != playback.StatePlaying && snap.State != playback.StateStalled {
		pauseLabel = "Resume"
		pauseStyle = discordgo.SuccessButton
	}

	joinLabel := "Join"
	if v.VoiceConnected {
		joinLabel = "Leave"
	}

	autoPlayStyle := discordgo.SecondaryButton
	if snap.AutoPlay {
		autoPlayStyle = discordgo.PrimaryButton
	}

	noPlaylist := snap.Length == 0

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Prev", CustomID: CustomIDPrev, Disabled: noPlaylist},
				discordgo.Button{Style: pauseStyle, Label: pauseLabel, CustomID: CustomIDPause, Disabled: !snap.HasTrack},
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Next", CustomID: CustomIDNext, Disabled: noPlaylist},
				discordgo.Button{Style: discordgo.DangerButton, Label: "Stop", CustomID: CustomIDStop, Disabled: !snap.HasTrack},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Style: discordgo.SuccessButton, Label: joinLabel, CustomID: CustomIDJoin},
				discordgo.Button{Style: discordgo.PrimaryButton, Label: "Search", CustomID: CustomIDSearch},
				discordgo.Button{Style: autoPlayStyle, Label: "Auto-play", CustomID: CustomIDAutoPlay},
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Favorite", CustomID: CustomIDFavorite, Disabled: !snap.HasTrack},
				discordgo.Button{Style: discordgo.SecondaryButton, Label: "Playlist", CustomID: CustomIDQueue},
			},
		},
	}
}

// renderHash changes whenever a redraw would look different. Progress is
// bucketed so a playing track redraws every bucket rather than every poll.
func renderHash(v View, bucket time.Duration) string {
	snap := v.Snapshot
	if !snap.HasTrack {
		return fmt.Sprintf("empty:auto=%t:voice=%t:len=%d", snap.AutoPlay, v.VoiceConnected, snap.Length)
	}
	step := int64(0)
	if bucket > 0 {
		step = int64(snap.Progress.Elapsed / bucket)
	}
	return fmt.Sprintf("%s:%s:%d:%d:auto=%t:voice=%t:%d/%d",
		snap.Track.Key(), snap.State, step, snap.Progress.Total/time.Second,
		snap.AutoPlay, v.VoiceConnected, snap.Cursor, snap.Length)
}

func emptySnapshot() playback.Snapshot {
	return playback.Snapshot{State: playback.StateIdle, Cursor: -1}
}
