// Package search keeps per-user search results between the result list and
// the selection that plays one of them.
package search

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
)

const (
	MaxResults           = 5
	MaxSelectOptions     = 25
	SearchSessionTTL     = 2 * time.Minute
	SearchCustomIDPrefix = "music_search_select"
)

type Session struct {
	GuildID   string
	UserID    string
	Query     string
	Results   []music.Track
	CreatedAt time.Time
}

type Store struct {
	mu   sync.Mutex
	data map[string]Session
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: make(map[string]Session), now: time.Now}
}

var DefaultStore = NewStore()

func sessionKey(guildID, userID string) string {
	return guildID + ":" + userID
}

func (st *Store) Save(s Session) {
	if s.GuildID == "" || s.UserID == "" {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	s.CreatedAt = st.now()
	st.data[sessionKey(s.GuildID, s.UserID)] = s
	st.pruneLocked()
}

func (st *Store) Get(guildID, userID string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	key := sessionKey(guildID, userID)
	session, ok := st.data[key]
	if !ok {
		return Session{}, false
	}
	if st.now().Sub(session.CreatedAt) > SearchSessionTTL {
		delete(st.data, key)
		return Session{}, false
	}
	return session, true
}

func (st *Store) Delete(guildID, userID string) {
	st.mu.Lock()
	delete(st.data, sessionKey(guildID, userID))
	st.mu.Unlock()
}

func (st *Store) pruneLocked() {
	now := st.now()
	for key, s := range st.data {
		if now.Sub(s.CreatedAt) > SearchSessionTTL {
			delete(st.data, key)
		}
	}
}

func BuildSearchComponents(query string, results []music.Track) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	if strings.TrimSpace(query) == "" {
		query = "unknown"
	}

	options := make([]discordgo.SelectMenuOption, 0, min(len(results), MaxSelectOptions))
	for i, track := range results {
		if i >= MaxSelectOptions {
			break
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       shared.Truncate(track.Title, 80),
			Description: shared.Truncate(formatResultDescription(track), 100),
			Value:       fmt.Sprintf("%d", i),
		})
	}

	menu := discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    SearchCustomIDPrefix,
		Placeholder: "Pick a track to play",
		Options:     options,
	}

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: "🔎 **Search results**"},
				discordgo.TextDisplay{Content: fmt.Sprintf("Query: **%s**", shared.EscapeMarkdown(query))},
				discordgo.TextDisplay{Content: buildResultSummary(results)},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{menu},
				},
			},
		},
	}
}

func buildResultSummary(results []music.Track) string {
	lines := make([]string, 0, len(results))
	for i, track := range results {
		if i >= MaxResults {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** [%s]",
			i+1,
			shared.EscapeMarkdown(shared.Truncate(track.DisplayName(), 80)),
			shared.FormatDuration(track.Duration),
		))
	}
	if len(lines) == 0 {
		return "No results."
	}
	return strings.Join(lines, "\n")
}

func formatResultDescription(track music.Track) string {
	source := string(track.Source)
	if source == "" {
		source = string(music.TrackSourceUnknown)
	}
	return fmt.Sprintf("%s • %s", source, shared.FormatDuration(track.Duration))
}
