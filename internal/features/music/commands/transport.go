package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
)

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, msg string, err error) {
	if err != nil {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(err))
		return
	}
	shared.RespondEphemeral(s, i, msg)
}

func Pause(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	actions.Deferred(s, i, func() (string, error) { return actions.TogglePause(s, d, i.GuildID) })
}

func Next(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	actions.Deferred(s, i, func() (string, error) { return actions.Step(s, d, i.GuildID, 1) })
}

func Prev(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	actions.Deferred(s, i, func() (string, error) { return actions.Step(s, d, i.GuildID, -1) })
}

func Replay(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	actions.Deferred(s, i, func() (string, error) { return actions.Step(s, d, i.GuildID, 0) })
}

func Stop(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	actions.Deferred(s, i, func() (string, error) { return actions.Stop(s, d, i.GuildID) })
}

func Seek(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	data := i.ApplicationCommandData()
	seconds := shared.GetOptionInt64(data.Options, "seconds")
	actions.Deferred(s, i, func() (string, error) {
		return actions.Seek(s, d, i.GuildID, time.Duration(seconds)*time.Second)
	})
}

func AutoPlay(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	data := i.ApplicationCommandData()
	enabled, ok := shared.GetOptionBool(data.Options, "enabled")
	if !ok {
		enabled = true
		if p, found := d.Players.Lookup(i.GuildID); found {
			enabled = !p.Controller().AutoPlay()
		}
	}
	msg, err := actions.SetAutoPlay(s, d, i.GuildID, enabled)
	respond(s, i, msg, err)
}

func NowPlaying(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	p, ok := d.Players.Lookup(i.GuildID)
	if !ok {
		shared.RespondEphemeral(s, i, "Nothing is playing.")
		return
	}

	snap := p.Snapshot()
	if !snap.HasTrack {
		shared.RespondEphemeral(s, i, "Nothing is playing.")
		return
	}

	autoPlay := "off"
	if snap.AutoPlay {
		autoPlay = "on"
	}
	content := fmt.Sprintf("🎧 %s\n`%s` • %s • auto-play %s",
		shared.TrackLine(snap.Track), snap.Progress.Label(), snap.State, autoPlay)
	shared.RespondComponents(s, i, shared.NoticeComponents("Now playing", content), true)
}
