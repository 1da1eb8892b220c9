package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	botinfocmd "github.com/hxnx/moonplayer/internal/features/botinfo/commands"
	dashboard "github.com/hxnx/moonplayer/internal/features/dashboard"
	dashboardcmd "github.com/hxnx/moonplayer/internal/features/dashboard/commands"
	dashboardlisteners "github.com/hxnx/moonplayer/internal/features/dashboard/listeners"
	musiccmd "github.com/hxnx/moonplayer/internal/features/music/commands"
	musiclisteners "github.com/hxnx/moonplayer/internal/features/music/listeners"
	queueview "github.com/hxnx/moonplayer/internal/features/music/queueview"
	pingcmd "github.com/hxnx/moonplayer/internal/features/ping/commands"
	pinglisteners "github.com/hxnx/moonplayer/internal/features/ping/listeners"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

type handlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps)

var (
	minSeek      = 0.0
	minPosition  = 1.0
	minQueueSize = 1.0
	maxQueueSize = float64(queueview.MaxPerPage)

	sourceOption = &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "source",
		Description: "Where to search (default: detect from the input)",
		Required:    false,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "YouTube", Value: "youtube"},
			{Name: "Spotify", Value: "spotify"},
			{Name: "SoundCloud", Value: "soundcloud"},
		},
	}

	CommandList = []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check the bot's latency",
		},
		{
			Name:        "info",
			Description: "Show bot and session status",
		},
		{
			Name:        "play",
			Description: "Play a song by name or URL",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Song name, YouTube, Spotify or SoundCloud link",
					Required:    true,
				},
				sourceOption,
			},
		},
		{
			Name:        "search",
			Description: "Search and pick a song from the results",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "What to search for",
					Required:    true,
				},
				sourceOption,
			},
		},
		{
			Name:        "pause",
			Description: "Pause or resume playback",
		},
		{
			Name:        "seek",
			Description: "Jump to a position in the current song",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "seconds",
					Description: "Position in seconds",
					Required:    true,
					MinValue:    &minSeek,
				},
			},
		},
		{
			Name:        "stop",
			Description: "Stop playback",
		},
		{
			Name:        "next",
			Description: "Play the next playlist entry",
		},
		{
			Name:        "prev",
			Description: "Play the previous playlist entry",
		},
		{
			Name:        "replay",
			Description: "Play the current song again",
		},
		{
			Name:        "autoplay",
			Description: "Continue with the next entry when a song ends",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "On or off (default: toggle)",
					Required:    false,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Show the playlist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Entries per page",
					Required:    false,
					MinValue:    &minQueueSize,
					MaxValue:    maxQueueSize,
				},
			},
		},
		{
			Name:        "remove",
			Description: "Remove a playlist entry",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "position",
					Description: "Entry number as shown by /queue",
					Required:    true,
					MinValue:    &minPosition,
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the current song",
		},
		{
			Name:        "favorite",
			Description: "Add or remove the current song from favorites",
		},
		{
			Name:        "favorites",
			Description: "List this server's favorites",
		},
		{
			Name:        "history",
			Description: "List recently played songs",
		},
		{
			Name:        "dashboard",
			Description: "Set up the MoonPlayer dashboard channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "category",
					Description:  "Category to create the channel in",
					Required:     false,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "channel_name",
					Description: "Channel name (default: " + dashboard.DefaultChannelName + ")",
					Required:    false,
				},
			},
		},
	}

	commandHandlers = map[string]handlerFunc{
		"ping":       pingcmd.Ping,
		"info":       botinfocmd.Info,
		"play":       musiccmd.Play,
		"search":     musiccmd.Search,
		"pause":      musiccmd.Pause,
		"seek":       musiccmd.Seek,
		"stop":       musiccmd.Stop,
		"next":       musiccmd.Next,
		"prev":       musiccmd.Prev,
		"replay":     musiccmd.Replay,
		"autoplay":   musiccmd.AutoPlay,
		"queue":      musiccmd.Queue,
		"remove":     musiccmd.Remove,
		"nowplaying": musiccmd.NowPlaying,
		"favorite":   musiccmd.Favorite,
		"favorites":  musiccmd.Favorites,
		"history":    musiccmd.History,
	}
)

// Options is what the handlers need from the running bot.
type Options struct {
	Deps      shared.Deps
	Dashboard *dashboard.Updater
	OwnerID   string
}

func RegisterCommands(s *discordgo.Session, appID string, guildID string) ([]*discordgo.ApplicationCommand, error) {
	scope := "global"
	if guildID != "" {
		scope = fmt.Sprintf("guild:%s", guildID)
	}

	log.Infof("registering %d commands (%s)", len(CommandList), scope)

	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, CommandList)
	if err != nil {
		return nil, fmt.Errorf("cannot bulk overwrite commands: %w", err)
	}
	return cmds, nil
}

func AddHandlers(s *discordgo.Session, opts Options) {
	d := opts.Deps

	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if HandleSyncMessage(s, m, opts.OwnerID) {
			return
		}
		musiclisteners.HandleMusicMessage(s, m, d)
	})

	s.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		musiclisteners.HandleVoiceStateUpdate(s, vs, d)
	})

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			data := i.ApplicationCommandData()
			if data.Name == "dashboard" {
				dashboardcmd.SetupDashboard(s, i, opts.Dashboard)
				return
			}
			if handler, ok := commandHandlers[data.Name]; ok {
				handler(s, i, d)
			}
		case discordgo.InteractionModalSubmit:
			dashboardlisteners.RouteDashboardComponent(s, i, d)
		case discordgo.InteractionMessageComponent:
			if pinglisteners.RoutePingComponent(s, i, d) {
				return
			}
			if musiclisteners.RouteMusicComponent(s, i, d) {
				return
			}
			dashboardlisteners.RouteDashboardComponent(s, i, d)
		}
	})
}
