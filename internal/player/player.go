package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/engine/voice"
	"github.com/hxnx/moonplayer/internal/library"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoVoiceChannel = errors.New("user is not in a voice channel")
	ErrSessionNil     = errors.New("discord session is nil")
)

// Engine is the playback engine a guild player drives. The voice engine is
// the production implementation.
type Engine interface {
	playback.Engine
	SetSink(sink voice.Sink)
	SetVolume(percent int)
}

// Player is the per-guild playback session: one controller, one engine and
// at most one voice connection.
type Player struct {
	guildID  string
	ctrl     *playback.Controller
	engine   Engine
	recorder *library.Recorder
	lib      *library.Library
	settings *music.SettingsStore

	mu        sync.Mutex
	vc        *discordgo.VoiceConnection
	channelID string
	volume    int

	// lastActive is unix nanos; written from controller observers.
	lastActive atomic.Int64
	now        func() time.Time
}

func (p *Player) GuildID() string {
	return p.guildID
}

func (p *Player) Controller() *playback.Controller {
	return p.ctrl
}

func (p *Player) Snapshot() playback.Snapshot {
	return p.ctrl.Snapshot()
}

func (p *Player) HasVoiceConnection() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vc != nil
}

func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) JoinVoice(s *discordgo.Session, channelID string) error {
	if s == nil {
		return ErrSessionNil
	}
	if channelID == "" {
		return fmt.Errorf("channel ID is empty")
	}

	vc, err := s.ChannelVoiceJoin(p.guildID, channelID, false, true)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.vc = vc
	p.channelID = channelID
	p.mu.Unlock()

	p.engine.SetSink(voice.NewConnSink(vc))
	p.touch()
	return nil
}

// EnsureVoice joins the voice channel userID is in, unless already connected.
func (p *Player) EnsureVoice(s *discordgo.Session, userID string) error {
	if p.HasVoiceConnection() {
		return nil
	}

	channelID, err := findUserVoiceChannel(s, p.guildID, userID)
	if err != nil {
		return err
	}
	return p.JoinVoice(s, channelID)
}

// Leave stops playback and disconnects from voice.
func (p *Player) Leave() {
	if err := p.ctrl.Stop(); err != nil {
		log.WithField("guild", p.guildID).Debugf("stop on leave: %v", err)
	}
	p.engine.SetSink(nil)

	p.mu.Lock()
	vc := p.vc
	p.vc = nil
	p.channelID = ""
	p.mu.Unlock()

	if vc != nil {
		if err := vc.Disconnect(); err != nil {
			log.WithField("guild", p.guildID).Warnf("voice disconnect failed: %v", err)
		}
	}
}

// Enqueue appends track to the playlist. When nothing is playing the new
// entry starts right away and started is true.
func (p *Player) Enqueue(ctx context.Context, track music.Track) (index int, started bool, err error) {
	index = p.ctrl.Append(track)
	p.touch()

	switch p.ctrl.State() {
	case playback.StateIdle, playback.StateCompleted:
	default:
		return index, false, nil
	}

	if err := p.ctrl.PlayAt(ctx, index); err != nil {
		return index, false, err
	}
	return index, true, nil
}

// SetAutoPlay updates the controller and persists the choice when a
// settings store is configured.
func (p *Player) SetAutoPlay(ctx context.Context, enabled bool) error {
	p.ctrl.SetAutoPlay(enabled)
	return p.saveSettings(ctx)
}

func (p *Player) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 200 {
		return fmt.Errorf("volume must be between 0 and 200")
	}
	p.mu.Lock()
	p.volume = percent
	p.mu.Unlock()
	p.engine.SetVolume(percent)
	return p.saveSettings(ctx)
}

// ToggleFavorite flips the favorite mark of the current track.
func (p *Player) ToggleFavorite(ctx context.Context) (music.Track, bool, error) {
	track, ok := p.ctrl.Current()
	if !ok {
		return music.Track{}, false, playback.ErrNothingLoaded
	}
	added, err := p.lib.ToggleFavorite(ctx, p.guildID, track)
	return track, added, err
}

func (p *Player) loadSettings(ctx context.Context, defaults music.Settings) {
	settings := defaults
	if p.settings != nil {
		stored, err := p.settings.Get(ctx, p.guildID)
		if err != nil {
			log.WithField("guild", p.guildID).Debugf("using default settings: %v", err)
		} else {
			settings = stored
		}
	}

	p.ctrl.SetAutoPlay(settings.AutoPlay)
	p.mu.Lock()
	p.volume = settings.Volume
	p.mu.Unlock()
	p.engine.SetVolume(settings.Volume)
}

func (p *Player) saveSettings(ctx context.Context) error {
	if p.settings == nil {
		return nil
	}
	return p.settings.Set(ctx, p.guildID, music.Settings{
		AutoPlay: p.ctrl.AutoPlay(),
		Volume:   p.Volume(),
	})
}

func (p *Player) touch() {
	p.lastActive.Store(p.now().UnixNano())
}

// idleFor reports how long the player has been without an active session.
func (p *Player) idleFor(now time.Time) time.Duration {
	switch p.ctrl.State() {
	case playback.StateLoading, playback.StatePlaying, playback.StateStalled:
		return 0
	}
	return now.Sub(time.Unix(0, p.lastActive.Load()))
}

func findUserVoiceChannel(s *discordgo.Session, guildID string, userID string) (string, error) {
	if s == nil {
		return "", ErrSessionNil
	}

	var guild *discordgo.Guild
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			guild = g
		}
	}
	if guild == nil {
		g, err := s.Guild(guildID)
		if err != nil {
			return "", err
		}
		guild = g
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, nil
		}
	}

	return "", ErrNoVoiceChannel
}
