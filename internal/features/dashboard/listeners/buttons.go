package listeners

import (
	"github.com/bwmarrin/discordgo"
	dashboard "github.com/hxnx/moonplayer/internal/features/dashboard"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	queueview "github.com/hxnx/moonplayer/internal/features/music/queueview"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
)

func HandleDashboardComponent(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	switch i.MessageComponentData().CustomID {
	case dashboard.CustomIDJoin:
		handleJoin(s, i, d)
	case dashboard.CustomIDSearch:
		openSearchModal(s, i)
	case dashboard.CustomIDQueue:
		handleQueue(s, i, d)
	case dashboard.CustomIDPause:
		actions.Deferred(s, i, func() (string, error) { return actions.TogglePause(s, d, i.GuildID) })
	case dashboard.CustomIDPrev:
		actions.Deferred(s, i, func() (string, error) { return actions.Step(s, d, i.GuildID, -1) })
	case dashboard.CustomIDNext:
		actions.Deferred(s, i, func() (string, error) { return actions.Step(s, d, i.GuildID, 1) })
	case dashboard.CustomIDStop:
		actions.Deferred(s, i, func() (string, error) { return actions.Stop(s, d, i.GuildID) })
	case dashboard.CustomIDFavorite:
		actions.Deferred(s, i, func() (string, error) { return actions.ToggleFavorite(d, i.GuildID) })
	case dashboard.CustomIDAutoPlay:
		actions.Deferred(s, i, func() (string, error) {
			enabled := true
			if p, ok := d.Players.Lookup(i.GuildID); ok {
				enabled = !p.Controller().AutoPlay()
			}
			return actions.SetAutoPlay(s, d, i.GuildID, enabled)
		})
	}
}

// deferred acknowledges the click, runs fn and reports its outcome.
func handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	userID := shared.GetInteractionUserID(i)
	p := d.Players.Get(i.GuildID)
	if err := p.EnsureVoice(s, userID); err != nil {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(err))
		return
	}
	d.RefreshDashboard(s, i.GuildID)
	shared.RespondEphemeral(s, i, "🔊 Joined your voice channel.")
}

func handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	p, ok := d.Players.Lookup(i.GuildID)
	if !ok || len(p.Controller().Playlist()) == 0 {
		shared.RespondEphemeral(s, i, "The playlist is empty.")
		return
	}
	ctrl := p.Controller()
	components, _ := queueview.BuildQueueComponents(ctrl.Playlist(), ctrl.Cursor(), 1, queueview.DefaultPerPage)
	shared.RespondComponents(s, i, components, true)
}
