package listeners

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	queueview "github.com/hxnx/moonplayer/internal/features/music/queueview"
	search "github.com/hxnx/moonplayer/internal/features/music/search"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

func HandleMusicComponent(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if s == nil || i == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}

	data := i.MessageComponentData()
	switch {
	case strings.HasPrefix(data.CustomID, queueview.CustomIDPrefix):
		handleQueuePagination(s, i, d, data.CustomID)
	case data.CustomID == queueview.PlayCustomID:
		handleQueuePlay(s, i, d, data.Values)
	case strings.HasPrefix(data.CustomID, search.SearchCustomIDPrefix):
		handleSearchSelect(s, i, d, data.Values)
	}
}

func handleSearchSelect(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps, values []string) {
	userID := shared.GetInteractionUserID(i)
	if userID == "" || i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	session, ok := search.DefaultStore.Get(i.GuildID, userID)
	if !ok || len(session.Results) == 0 {
		shared.RespondEphemeral(s, i, "That search has expired. Search again.")
		return
	}

	index, ok := parseIndex(values, len(session.Results))
	if !ok {
		shared.RespondEphemeral(s, i, "That is not a valid choice.")
		return
	}

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("search select defer failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actions.ResolveTimeout)
	defer cancel()

	msg, err := actions.Enqueue(ctx, s, d, i.GuildID, userID, session.Results[index])
	if err != nil {
		shared.FollowupEphemeral(s, i, actions.ErrorMessage(err))
		return
	}

	search.DefaultStore.Delete(i.GuildID, userID)
	shared.FollowupEphemeral(s, i, msg)
}

func handleQueuePagination(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps, customID string) {
	page, perPage, ok := queueview.ParseQueuePageCustomID(customID)
	if !ok {
		shared.RespondEphemeral(s, i, "That page does not exist.")
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	p, found := d.Players.Lookup(i.GuildID)
	if !found {
		shared.RespondEphemeral(s, i, "The playlist is empty.")
		return
	}

	ctrl := p.Controller()
	components, _ := queueview.BuildQueueComponents(ctrl.Playlist(), ctrl.Cursor(), page, perPage)
	shared.UpdateComponents(s, i, components)
}

func handleQueuePlay(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps, values []string) {
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	p, found := d.Players.Lookup(i.GuildID)
	if !found {
		shared.RespondEphemeral(s, i, "The playlist is empty.")
		return
	}

	ctrl := p.Controller()
	index, ok := parseIndex(values, len(ctrl.Playlist()))
	if !ok {
		shared.RespondEphemeral(s, i, "That entry is gone. Open the queue again.")
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		log.Printf("queue play defer failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actions.ResolveTimeout)
	defer cancel()

	if err := ctrl.PlayAt(ctx, index); err != nil {
		shared.FollowupEphemeral(s, i, actions.ErrorMessage(err))
		return
	}
	d.RefreshDashboard(s, i.GuildID)

	cursor := ctrl.Cursor()
	page := cursor/queueview.DefaultPerPage + 1
	components, _ := queueview.BuildQueueComponents(ctrl.Playlist(), cursor, page, queueview.DefaultPerPage)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Components: &components}); err != nil {
		log.Printf("queue play edit failed: %v", err)
	}
}

// parseIndex reads the first selected value as an index below n.
func parseIndex(values []string, n int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	index, err := strconv.Atoi(values[0])
	if err != nil || index < 0 || index >= n {
		return 0, false
	}
	return index, true
}
