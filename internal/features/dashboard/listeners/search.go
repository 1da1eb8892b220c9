package listeners

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/features/music/actions"
	musicsearch "github.com/hxnx/moonplayer/internal/features/music/search"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
	log "github.com/sirupsen/logrus"
)

const (
	searchModalID         = "dashboard_search_modal"
	searchInputID         = "dashboard_search_input"
	searchProviderInputID = "dashboard_search_provider"
)

func searchModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: searchModalID,
		Title:    "Search music",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    searchInputID,
						Label:       "Title or URL",
						Style:       discordgo.TextInputShort,
						Placeholder: "Song name, YouTube, Spotify or SoundCloud link",
						Required:    true,
					},
				},
			},
			discordgo.Label{
				Label:       "Provider",
				Description: "Leave on auto to detect it from the input",
				Component: discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    searchProviderInputID,
					Placeholder: "Pick a provider",
					Options: []discordgo.SelectMenuOption{
						{Label: "Auto", Value: "auto", Default: true},
						{Label: "YouTube", Value: "youtube"},
						{Label: "Spotify", Value: "spotify"},
						{Label: "SoundCloud", Value: "soundcloud"},
					},
				},
			},
		},
	}
}

func openSearchModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: searchModal(),
	}); err != nil {
		log.Printf("dashboard search: modal open failed: %v", err)
	}
}

// parseSearchSubmit reads the query and provider hint from the modal.
// ok is false when a provider was picked that is not supported.
func parseSearchSubmit(data discordgo.ModalSubmitInteractionData) (query string, hint music.TrackSource, ok bool) {
	query = strings.TrimSpace(shared.ModalInputValue(data, searchInputID))
	provider := strings.TrimSpace(shared.ModalSelectValue(data, searchProviderInputID))

	hint = shared.ParseProviderHint(provider)
	if provider != "" && !strings.EqualFold(provider, "auto") && hint == music.TrackSourceUnknown {
		return query, hint, false
	}
	if hint == music.TrackSourceUnknown {
		hint = shared.DetectSourceHint(query)
	}
	return query, hint, true
}

func handleSearchSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, d shared.Deps) {
	userID := shared.GetInteractionUserID(i)
	if userID == "" || i.GuildID == "" {
		shared.RespondEphemeral(s, i, actions.ErrorMessage(actions.ErrNoGuild))
		return
	}

	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("dashboard search: defer failed: %v", err)
		return
	}

	query, hint, ok := parseSearchSubmit(i.ModalSubmitData())
	if !ok {
		shared.FollowupEphemeral(s, i, "Pick auto, YouTube, Spotify or SoundCloud.")
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
		UserID:  userID,
		Query:   query,
		Results: results,
	})
	shared.FollowupComponents(s, i, musicsearch.BuildSearchComponents(query, results), true)
}
