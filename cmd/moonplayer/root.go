package main

import (
	"github.com/hxnx/moonplayer/config"
	"github.com/hxnx/moonplayer/internal/logger"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "moonplayer",
	Short:         "Discord music bot and terminal player",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the environment and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Warn(err)
	}
	return cfg, nil
}
