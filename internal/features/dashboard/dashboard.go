// Package dashboard keeps a live now-playing message per guild.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/database"
	"github.com/hxnx/moonplayer/internal/player"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultChannelName = "🌙-moonplayer"

	updateTickerInterval = 2 * time.Second
	progressBucket       = 5 * time.Second
)

type Entry struct {
	ChannelID string
	MessageID string
}

// Updater owns the dashboard messages. Entries are cached in memory and
// persisted through the repository when PostgreSQL is configured.
type Updater struct {
	players *player.Manager
	repo    *database.DashboardRepository

	mu       sync.Mutex
	entries  map[string]Entry
	rendered map[string]string
}

func NewUpdater(players *player.Manager, repo *database.DashboardRepository) *Updater {
	return &Updater{
		players:  players,
		repo:     repo,
		entries:  make(map[string]Entry),
		rendered: make(map[string]string),
	}
}

// LoadEntries restores persisted dashboards after a restart.
func (u *Updater) LoadEntries() error {
	entries, err := u.repo.List()
	if err != nil {
		return err
	}

	u.mu.Lock()
	for _, e := range entries {
		u.entries[e.GuildID] = Entry{ChannelID: e.ChannelID, MessageID: e.MessageID}
	}
	u.mu.Unlock()

	log.Debugf("restored %d dashboard(s)", len(entries))
	return nil
}

func (u *Updater) Entry(guildID string) (Entry, bool) {
	u.mu.Lock()
	entry, ok := u.entries[guildID]
	u.mu.Unlock()
	if ok {
		return entry, true
	}

	stored, ok, err := u.repo.Get(guildID)
	if err != nil {
		log.WithField("guild", guildID).Warnf("failed to load dashboard entry: %v", err)
		return Entry{}, false
	}
	if !ok || stored.ChannelID == "" || stored.MessageID == "" {
		return Entry{}, false
	}

	entry = Entry{ChannelID: stored.ChannelID, MessageID: stored.MessageID}
	u.mu.Lock()
	u.entries[guildID] = entry
	u.mu.Unlock()
	return entry, true
}

func (u *Updater) Channel(guildID string) (string, bool) {
	entry, ok := u.Entry(guildID)
	return entry.ChannelID, ok
}

func (u *Updater) SetEntry(guildID string, entry Entry) {
	u.mu.Lock()
	u.entries[guildID] = entry
	delete(u.rendered, guildID)
	u.mu.Unlock()

	if err := u.repo.Upsert(guildID, entry.ChannelID, entry.MessageID); err != nil {
		log.WithField("guild", guildID).Warnf("failed to save dashboard entry: %v", err)
	}
}

func (u *Updater) ClearEntry(guildID string) {
	u.mu.Lock()
	delete(u.entries, guildID)
	delete(u.rendered, guildID)
	u.mu.Unlock()

	if err := u.repo.Delete(guildID); err != nil {
		log.WithField("guild", guildID).Warnf("failed to delete dashboard entry: %v", err)
	}
}

// DeletePrevious removes the old dashboard message, if any.
func (u *Updater) DeletePrevious(s *discordgo.Session, guildID string) error {
	entry, ok := u.Entry(guildID)
	if !ok {
		return nil
	}
	return s.ChannelMessageDelete(entry.ChannelID, entry.MessageID)
}

func (u *Updater) view(guildID string) View {
	p, ok := u.players.Lookup(guildID)
	if !ok {
		return View{Snapshot: emptySnapshot()}
	}
	return View{Snapshot: p.Snapshot(), VoiceConnected: p.HasVoiceConnection()}
}

func (u *Updater) Components(guildID string) []discordgo.MessageComponent {
	return BuildComponents(u.view(guildID))
}

// Refresh redraws the guild's dashboard, logging instead of returning errors.
func (u *Updater) Refresh(s *discordgo.Session, guildID string) {
	if _, ok := u.Entry(guildID); !ok {
		return
	}
	if err := u.Update(s, guildID); err != nil {
		log.WithField("guild", guildID).Warnf("dashboard update failed: %v", err)
	}
}

// Update edits the dashboard message with the current session state.
func (u *Updater) Update(s *discordgo.Session, guildID string) error {
	if s == nil || guildID == "" {
		return fmt.Errorf("invalid dashboard update parameters")
	}

	entry, ok := u.Entry(guildID)
	if !ok {
		return fmt.Errorf("dashboard message not found")
	}

	v := u.view(guildID)
	components := BuildComponents(v)

	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         entry.MessageID,
		Channel:    entry.ChannelID,
		Components: &components,
		Flags:      discordgo.MessageFlagsIsComponentsV2,
	})
	if err != nil {
		return err
	}

	u.mu.Lock()
	u.rendered[guildID] = renderHash(v, progressBucket)
	u.mu.Unlock()
	return nil
}

// Run redraws changed dashboards on a ticker until ctx ends.
func (u *Updater) Run(ctx context.Context, s *discordgo.Session) {
	ticker := time.NewTicker(updateTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, guildID := range u.stale() {
				if err := u.Update(s, guildID); err != nil {
					log.WithField("guild", guildID).Debugf("dashboard auto-update failed: %v", err)
				}
			}
		}
	}
}

// stale lists guilds whose dashboard no longer matches their session.
func (u *Updater) stale() []string {
	u.mu.Lock()
	guilds := make([]string, 0, len(u.entries))
	for guildID := range u.entries {
		guilds = append(guilds, guildID)
	}
	u.mu.Unlock()

	var out []string
	for _, guildID := range guilds {
		hash := renderHash(u.view(guildID), progressBucket)
		u.mu.Lock()
		prev, ok := u.rendered[guildID]
		u.mu.Unlock()
		if !ok || prev != hash {
			out = append(out, guildID)
		}
	}
	return out
}
