// Package player keeps one playback session per Discord guild.
package player

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hxnx/moonplayer/internal/engine/voice"
	"github.com/hxnx/moonplayer/internal/library"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	log "github.com/sirupsen/logrus"
)

const settingsTimeout = 3 * time.Second

type Options struct {
	Service  *music.Service
	Library  *library.Library
	Settings *music.SettingsStore
	Timings  playback.Timings
	Defaults music.Settings
	FFmpeg   string

	// NewEngine overrides the voice engine, mostly for tests.
	NewEngine func() Engine
}

type Manager struct {
	ctx  context.Context
	opts Options

	mu      sync.Mutex
	players map[string]*Player
	now     func() time.Time
}

// NewManager creates players lazily. ctx bounds the background history
// workers of every player.
func NewManager(ctx context.Context, opts Options) *Manager {
	if opts.Library == nil {
		opts.Library = library.New(library.NewMemoryStore(), library.DefaultHistoryLimit)
	}
	if opts.NewEngine == nil {
		ffmpeg := opts.FFmpeg
		opts.NewEngine = func() Engine { return voice.NewEngine(ffmpeg) }
	}
	return &Manager{
		ctx:     ctx,
		opts:    opts,
		players: make(map[string]*Player),
		now:     time.Now,
	}
}

func (m *Manager) Library() *library.Library {
	return m.opts.Library
}

func (m *Manager) Service() *music.Service {
	return m.opts.Service
}

// Get returns the guild's player, creating it on first use.
func (m *Manager) Get(guildID string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[guildID]; ok {
		return p
	}

	p := m.newPlayer(guildID)
	m.players[guildID] = p
	log.WithField("guild", guildID).Debug("player created")
	return p
}

// Lookup returns the guild's player without creating one.
func (m *Manager) Lookup(guildID string) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[guildID]
	return p, ok
}

func (m *Manager) newPlayer(guildID string) *Player {
	engine := m.opts.NewEngine()

	var resolver playback.Resolver
	if m.opts.Service != nil {
		resolver = m.opts.Service
	}

	p := &Player{
		guildID:  guildID,
		engine:   engine,
		lib:      m.opts.Library,
		settings: m.opts.Settings,
		recorder: library.NewRecorder(m.opts.Library, guildID),
		now:      m.now,
	}
	p.touch()

	p.ctrl = playback.NewController(engine, resolver, m.opts.Timings).
		WithObserver(p.recorder).
		WithObserver(playback.ObserverFuncs{
			OnState: func(ev playback.StateEvent) {
				p.touch()
				if ev.Err != nil {
					log.WithFields(log.Fields{
						"guild": guildID,
						"track": ev.Track.DisplayName(),
					}).Warnf("playback %s: %v", ev.State, ev.Err)
				}
			},
		})
	p.recorder.Start(m.ctx)

	ctx, cancel := context.WithTimeout(m.ctx, settingsTimeout)
	defer cancel()
	p.loadSettings(ctx, m.opts.Defaults)
	return p
}

// Players returns every player sorted by guild ID.
func (m *Manager) Players() []*Player {
	m.mu.Lock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.mu.Unlock()

	sort.Slice(players, func(i, j int) bool { return players[i].guildID < players[j].guildID })
	return players
}

// ActiveCount counts guilds with a loading, playing, stalled or paused session.
func (m *Manager) ActiveCount() int {
	count := 0
	for _, p := range m.Players() {
		switch p.ctrl.State() {
		case playback.StateIdle, playback.StateCompleted:
		default:
			count++
		}
	}
	return count
}

// Remove stops the guild's session, leaves voice and forgets the player.
func (m *Manager) Remove(guildID string) {
	m.mu.Lock()
	p, ok := m.players[guildID]
	delete(m.players, guildID)
	m.mu.Unlock()

	if !ok {
		return
	}
	p.Leave()
	p.recorder.Close()
}

// ReapIdle removes players that have not played anything for timeout and
// returns their guild IDs.
func (m *Manager) ReapIdle(timeout time.Duration) []string {
	if timeout <= 0 {
		return nil
	}

	now := m.now()
	var reaped []string
	for _, p := range m.Players() {
		if p.idleFor(now) < timeout {
			continue
		}
		m.Remove(p.guildID)
		reaped = append(reaped, p.guildID)
	}
	if len(reaped) > 0 {
		log.Infof("left %d idle guild(s)", len(reaped))
	}
	return reaped
}

// Shutdown removes every player.
func (m *Manager) Shutdown() {
	for _, p := range m.Players() {
		m.Remove(p.guildID)
	}
}
