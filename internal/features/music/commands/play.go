package commands

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	musicsearch "github.com/hxnx/moonplayer/internal/features/music/search"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

// Play resolves the query to one track and queues it.
func Play(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	userID := shared.GetInteractionUserID(i)
	data := i.ApplicationCommandData()
	query := strings.TrimSpace(shared.GetOptionString(data.Options, "query"))
	hint := shared.ParseProviderHint(shared.GetOptionString(data.Options, "source"))

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("play defer failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actions.ResolveTimeout)
	defer cancel()

	track, err := actions.Resolve(ctx, d, query, hint)
	if err != nil {
		log.WithField("query", query).Debugf("play resolve failed: %v", err)
		shared.FollowupEphemeral(s, i, actions.ErrorMessage(err))
		return
	}

	msg, err := actions.Enqueue(ctx, s, d, i.GuildID, userID, track)
	if err != nil {
		shared.FollowupEphemeral(s, i, actions.ErrorMessage(err))
		return
	}
	shared.FollowupEphemeral(s, i, msg)
}

// Search shows a result list; picking an entry queues it.
func Search(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	data := i.ApplicationCommandData()
	query := strings.TrimSpace(shared.GetOptionString(data.Options, "query"))
	hint := shared.ParseProviderHint(shared.GetOptionString(data.Options, "source"))

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("search defer failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actions.ResolveTimeout)
	defer cancel()

	results, err := actions.Search(ctx, d, query, hint, musicsearch.MaxResults)
	if err != nil {
		shared.FollowupEphemeral(s, i, actions.ErrorMessage(err))
		return
	}

	musicsearch.DefaultStore.Save(musicsearch.Session{
		GuildID: i.GuildID,
		UserID:  shared.GetInteractionUserID(i),
		Query:   query,
		Results: results,
	})
	shared.FollowupComponents(s, i, musicsearch.BuildSearchComponents(query, results), true)
}
