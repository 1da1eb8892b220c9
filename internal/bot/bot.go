package bot

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/config"
	"github.com/hxnx/moonplayer/internal/backend"
	commands "github.com/hxnx/moonplayer/internal/features"
	dashboard "github.com/hxnx/moonplayer/internal/features/dashboard"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/player"
	log "github.com/sirupsen/logrus"
)

const idleCheckInterval = 30 * time.Second

type Bot struct {
	config    *config.Config
	backend   *backend.Backend
	players   *player.Manager
	dashboard *dashboard.Updater
	sessions  []*discordgo.Session

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

func New(cfg *config.Config) (*Bot, error) {
	if err := cfg.ValidateBot(); err != nil {
		return nil, err
	}

	be, err := backend.Open(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	players := player.NewManager(ctx, player.Options{
		Service:  be.Service,
		Library:  be.Library,
		Settings: be.Settings,
		Timings:  cfg.Timings(),
		Defaults: backend.Defaults(cfg),
		FFmpeg:   cfg.FFmpegBinary,
	})

	shardCount := max(1, cfg.ShardCount)
	sessions := make([]*discordgo.Session, 0, shardCount)
	for shard := 0; shard < shardCount; shard++ {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			cancel()
			be.Close()
			return nil, err
		}

		s.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildVoiceStates |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsMessageContent

		if shardCount > 1 {
			s.Identify.Shard = &[2]int{shard, shardCount}
			s.ShardID = shard
			s.ShardCount = shardCount
		}

		sessions = append(sessions, s)
	}

	return &Bot{
		config:    cfg,
		backend:   be,
		players:   players,
		dashboard: dashboard.NewUpdater(players, be.Dashboards),
		sessions:  sessions,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func (b *Bot) Start() error {
	if b.started || len(b.sessions) == 0 {
		return nil
	}

	if err := b.dashboard.LoadEntries(); err != nil {
		log.Warnf("failed to restore dashboards: %v", err)
	}

	opts := commands.Options{
		Deps:      shared.Deps{Players: b.players, Dashboard: b.dashboard},
		Dashboard: b.dashboard,
		OwnerID:   b.config.OwnerID,
	}
	for _, s := range b.sessions {
		b.registerHandlers(s)
		commands.AddHandlers(s, opts)
	}

	if _, err := commands.RegisterCommands(b.sessions[0], b.config.ApplicationID, b.config.GuildID); err != nil {
		log.Warnf("failed to register slash commands: %v", err)
	}

	for _, s := range b.sessions {
		if err := s.Open(); err != nil {
			return err
		}
	}

	for _, s := range b.sessions {
		go b.dashboard.Run(b.ctx, s)
	}
	go b.reapIdle()
	go b.runPresence()

	b.started = true
	log.Infof("bot session opened (%d shard(s))", len(b.sessions))
	return nil
}

func (b *Bot) registerHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if s.State != nil && s.State.User != nil {
			log.Infof("bot ready as %s", s.State.User.Username)
		} else {
			log.Info("bot ready")
		}
		b.updatePresence()
	})
}

// sessionFor returns the shard session that owns guildID.
func (b *Bot) sessionFor(guildID string) *discordgo.Session {
	return b.sessions[shardFor(guildID, len(b.sessions))]
}

func shardFor(guildID string, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	id, err := strconv.ParseUint(guildID, 10, 64)
	if err != nil {
		return 0
	}
	return int((id >> 22) % uint64(shardCount))
}

// reapIdle disconnects guilds that have been idle longer than
// AUTO_LEAVE_TIMEOUT.
func (b *Bot) reapIdle() {
	timeout := b.config.AutoLeave()
	if timeout <= 0 {
		return
	}

	ticker := time.NewTicker(idleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			for _, guildID := range b.players.ReapIdle(timeout) {
				b.dashboard.Refresh(b.sessionFor(guildID), guildID)
			}
		}
	}
}

func (b *Bot) Stop() error {
	if !b.started {
		return nil
	}

	b.started = false
	b.cancel()
	b.players.Shutdown()
	for _, s := range b.sessions {
		if err := s.Close(); err != nil {
			return err
		}
	}
	b.backend.Close()

	log.Infof("bot session closed (%d shard(s))", len(b.sessions))
	return nil
}
