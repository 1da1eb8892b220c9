package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
	log "github.com/sirupsen/logrus"
)

const (
	libraryTimeout   = 2 * time.Second
	libraryListLimit = 15
)

func Favorite(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	actions.Deferred(s, i, func() (string, error) { return actions.ToggleFavorite(d, i.GuildID) })
}

func Favorites(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), libraryTimeout)
	defer cancel()

	tracks, err := d.Players.Library().Favorites(ctx, i.GuildID)
	if err != nil {
		log.WithField("guild", i.GuildID).Warnf("favorites failed: %v", err)
		shared.RespondEphemeral(s, i, "Could not load favorites.")
		return
	}
	shared.RespondComponents(s, i, shared.NoticeComponents("⭐ Favorites", formatTrackList(tracks, "No favorites yet.")), true)
}

func History(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), libraryTimeout)
	defer cancel()

	tracks, err := d.Players.Library().History(ctx, i.GuildID, libraryListLimit)
	if err != nil {
		log.WithField("guild", i.GuildID).Warnf("history failed: %v", err)
		shared.RespondEphemeral(s, i, "Could not load history.")
		return
	}
	shared.RespondComponents(s, i, shared.NoticeComponents("🕘 Recently played", formatTrackList(tracks, "Nothing played yet.")), true)
}

func formatTrackList(tracks []music.Track, empty string) string {
	if len(tracks) == 0 {
		return empty
	}

	lines := make([]string, 0, min(len(tracks), libraryListLimit))
	for idx, track := range tracks {
		if idx >= libraryListLimit {
			lines = append(lines, fmt.Sprintf("…and %d more", len(tracks)-libraryListLimit))
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s", idx+1, shared.TrackLine(track)))
	}
	return strings.Join(lines, "\n")
}
