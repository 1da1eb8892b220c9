package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hxnx/moonplayer/internal/bot"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Discord bot",
	Long: `Run the Discord bot.

Required: DISCORD_TOKEN, DISCORD_APPLICATION_ID.
Optional: DISCORD_GUILD_ID (register commands on one guild), DISCORD_OWNER_ID (!sync),
SHARD_COUNT, AUTO_LEAVE_TIMEOUT, DEFAULT_VOLUME, AUTO_PLAY, LIBRARY_BACKEND,
DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME/DB_SSLMODE, REDIS_HOST/REDIS_PORT/REDIS_PASSWORD/REDIS_DB,
SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET, YTDLP_BINARY, FFMPEG_BINARY.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.IsDevelopment() {
			log.Infof("development mode, commands registered on guild %s", cfg.GuildID)
		}
		if !cfg.HasSpotify() {
			log.Info("Spotify is not configured, Spotify links will not resolve")
		}

		b, err := bot.New(cfg)
		if err != nil {
			return err
		}
		if err := b.Start(); err != nil {
			return err
		}
		log.Info("bot is running, press CTRL+C to exit")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down")
		return b.Stop()
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
