// Package actions holds the playback operations shared by slash commands,
// dashboard buttons and dashboard-channel messages.
package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	"github.com/hxnx/moonplayer/internal/player"
	log "github.com/sirupsen/logrus"
)

const (
	ResolveTimeout = 60 * time.Second
	controlTimeout = 30 * time.Second
	seekStep       = 10 * time.Second
)

var ErrNoGuild = errors.New("this only works inside a server")

// Resolve turns user input into a single track.
func Resolve(ctx context.Context, d shared.Deps, input string, hint music.TrackSource) (music.Track, error) {
	service := d.Players.Service()
	if service == nil {
		return music.Track{}, music.ErrResolverNil
	}
	if hint == music.TrackSourceUnknown {
		hint = shared.DetectSourceHint(input)
	}
	return service.ResolveInput(ctx, input, hint)
}

// Search returns up to limit candidates for a free-text query.
func Search(ctx context.Context, d shared.Deps, query string, hint music.TrackSource, limit int) ([]music.Track, error) {
	service := d.Players.Service()
	if service == nil {
		return nil, music.ErrResolverNil
	}
	if hint == music.TrackSourceUnknown {
		hint = shared.DetectSourceHint(query)
	}
	return service.Search(ctx, query, hint, limit)
}

// Enqueue joins the user's voice channel if needed and adds track to the
// guild playlist, starting it when nothing is playing.
func Enqueue(ctx context.Context, s *discordgo.Session, d shared.Deps, guildID, userID string, track music.Track) (string, error) {
	if guildID == "" {
		return "", ErrNoGuild
	}

	p := d.Players.Get(guildID)
	if err := p.EnsureVoice(s, userID); err != nil {
		return "", err
	}

	index, started, err := p.Enqueue(ctx, track)
	defer d.RefreshDashboard(s, guildID)
	if err != nil {
		return "", err
	}

	if started {
		return fmt.Sprintf("▶️ Now playing %s", shared.TrackLine(track)), nil
	}
	return fmt.Sprintf("📋 Added %s at position **%d**", shared.TrackLine(track), index+1), nil
}

// TogglePause pauses, resumes, or replays an ended session.
func TogglePause(s *discordgo.Session, d shared.Deps, guildID string) (string, error) {
	p, err := lookup(d, guildID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()
	defer d.RefreshDashboard(s, guildID)

	if err := p.Controller().PauseResume(ctx); err != nil {
		return "", err
	}
	if p.Controller().State() == playback.StatePaused {
		return "⏸️ Paused.", nil
	}
	return "▶️ Resumed.", nil
}

// Step plays the next (dir > 0) or previous (dir < 0) playlist entry.
func Step(s *discordgo.Session, d shared.Deps, guildID string, dir int) (string, error) {
	p, err := lookup(d, guildID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()
	defer d.RefreshDashboard(s, guildID)

	if err := p.Controller().Advance(ctx, dir); err != nil {
		return "", err
	}
	track, _ := p.Controller().Current()
	return fmt.Sprintf("▶️ Now playing %s", shared.TrackLine(track)), nil
}

func Stop(s *discordgo.Session, d shared.Deps, guildID string) (string, error) {
	p, err := lookup(d, guildID)
	if err != nil {
		return "", err
	}
	defer d.RefreshDashboard(s, guildID)

	if err := p.Controller().Stop(); err != nil {
		log.WithField("guild", guildID).Debugf("stop: %v", err)
	}
	return "⏹️ Stopped.", nil
}

// Seek jumps to an absolute position.
func Seek(s *discordgo.Session, d shared.Deps, guildID string, position time.Duration) (string, error) {
	p, err := lookup(d, guildID)
	if err != nil {
		return "", err
	}
	defer d.RefreshDashboard(s, guildID)

	if err := p.Controller().Seek(position); err != nil {
		return "", err
	}
	return fmt.Sprintf("⏩ Jumped to `%s`.", p.Controller().Progress().Label()), nil
}

// SeekBy moves the position by steps of ten seconds.
func SeekBy(s *discordgo.Session, d shared.Deps, guildID string, steps int) (string, error) {
	p, err := lookup(d, guildID)
	if err != nil {
		return "", err
	}
	return Seek(s, d, guildID, p.Controller().Progress().Elapsed+time.Duration(steps)*seekStep)
}

func SetAutoPlay(s *discordgo.Session, d shared.Deps, guildID string, enabled bool) (string, error) {
	if guildID == "" {
		return "", ErrNoGuild
	}
	p := d.Players.Get(guildID)

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()
	defer d.RefreshDashboard(s, guildID)

	if err := p.SetAutoPlay(ctx, enabled); err != nil {
		log.WithField("guild", guildID).Warnf("failed to persist auto-play: %v", err)
	}
	if enabled {
		return "🔁 Auto-play is **on**.", nil
	}
	return "🔁 Auto-play is **off**.", nil
}

func ToggleFavorite(d shared.Deps, guildID string) (string, error) {
	p, err := lookup(d, guildID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	track, added, err := p.ToggleFavorite(ctx)
	if err != nil {
		return "", err
	}
	if added {
		return fmt.Sprintf("⭐ Added %s to favorites.", shared.TrackLine(track)), nil
	}
	return fmt.Sprintf("☆ Removed %s from favorites.", shared.TrackLine(track)), nil
}

func lookup(d shared.Deps, guildID string) (*player.Player, error) {
	if guildID == "" {
		return nil, ErrNoGuild
	}
	p, ok := d.Players.Lookup(guildID)
	if !ok {
		return nil, playback.ErrNothingLoaded
	}
	return p, nil
}

// ErrorMessage turns an error from this package into a message for users.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoGuild):
		return "This only works inside a server."
	case errors.Is(err, player.ErrNoVoiceChannel):
		return "Join a voice channel first."
	case errors.Is(err, music.ErrSpotifyClientNil):
		return "Spotify is not configured on this bot."
	case errors.Is(err, music.ErrMissingInput):
		return "Tell me what to play."
	case errors.Is(err, music.ErrUnsupportedInput):
		return "Only http and https links are supported."
	case errors.Is(err, music.ErrResolveFailed), errors.Is(err, music.ErrSpotifyResolveFailed), errors.Is(err, playback.ErrResolveFailure):
		return "I could not find a playable source for that."
	case errors.Is(err, playback.ErrLoadFailure):
		return "The track could not be opened."
	case errors.Is(err, playback.ErrPlaylistEmpty):
		return "The playlist is empty."
	case errors.Is(err, playback.ErrNothingLoaded):
		return "Nothing is playing."
	case errors.Is(err, playback.ErrNotStarted):
		return "The track is still loading."
	case errors.Is(err, playback.ErrIndexOutOfRange):
		return "There is no such playlist entry."
	case errors.Is(err, playback.ErrSuperseded):
		return "Another command took over."
	default:
		log.Warnf("unexpected playback error: %v", err)
		return "Something went wrong. Try again in a moment."
	}
}
