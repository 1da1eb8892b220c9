package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	queueview "github.com/hxnx/moonplayer/internal/features/music/queueview"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/playback"
)

func Queue(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	data := i.ApplicationCommandData()
	perPage := int(shared.GetOptionInt64(data.Options, "limit"))

	p, ok := d.Players.Lookup(i.GuildID)
	if !ok || len(p.Controller().Playlist()) == 0 {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(playback.ErrPlaylistEmpty))
		return
	}

	ctrl := p.Controller()
	components, _ := queueview.BuildQueueComponents(ctrl.Playlist(), ctrl.Cursor(), 1, perPage)
	shared.RespondComponents(s, i, components, true)
}

// Remove deletes a playlist entry by its 1-based position.
func Remove(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	data := i.ApplicationCommandData()
	position := int(shared.GetOptionInt64(data.Options, "position"))

	p, ok := d.Players.Lookup(i.GuildID)
	if !ok {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(playback.ErrPlaylistEmpty))
		return
	}

	tracks := p.Controller().Playlist()
	if err := p.Controller().RemoveAt(position - 1); err != nil {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(err))
		return
	}
	d.RefreshDashboard(s, i.GuildID)
	shared.RespondEphemeral(s, i, "🗑️ Removed "+shared.TrackLine(tracks[position-1])+".")
}
