package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hxnx/moonplayer/internal/playback"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("LIBRARY_BACKEND", "")
	t.Setenv("HISTORY_LIMIT", "")
	t.Setenv("SHARD_COUNT", "")
	t.Setenv("TEMP_DIR", "/var/tmp/moon")
	t.Setenv("DOWNLOAD_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.ShardCount != 1 {
		t.Errorf("ShardCount = %d, want 1", cfg.ShardCount)
	}
	if cfg.LibraryBackend != LibraryBackendAuto {
		t.Errorf("LibraryBackend = %q", cfg.LibraryBackend)
	}
	if cfg.DownloadDir != filepath.Join("/var/tmp/moon", "downloads") {
		t.Errorf("DownloadDir = %q", cfg.DownloadDir)
	}
	if got := cfg.Timings(); got != playback.DefaultTimings() {
		t.Errorf("Timings = %+v, want defaults", got)
	}
	if err := cfg.ValidateBot(); err == nil {
		t.Error("ValidateBot accepted a config without DISCORD_TOKEN")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_APPLICATION_ID", "app")
	t.Setenv("PLAYBACK_SHORT_PLAY_THRESHOLD_MS", "8000")
	t.Setenv("PLAYBACK_FAILURE_GRACE_MS", "0")
	t.Setenv("AUTO_PLAY", "false")
	t.Setenv("LIBRARY_BACKEND", "Redis")
	t.Setenv("DOWNLOAD_DIR", "/music/saved")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateBot(); err != nil {
		t.Fatal(err)
	}

	timings := cfg.Timings()
	if timings.ShortPlayThreshold != 8*time.Second {
		t.Errorf("ShortPlayThreshold = %v", timings.ShortPlayThreshold)
	}
	if timings.FailureGrace != 0 {
		t.Errorf("FailureGrace = %v, want 0", timings.FailureGrace)
	}
	if cfg.AutoPlay {
		t.Error("AutoPlay should be false")
	}
	if cfg.LibraryBackend != LibraryBackendRedis {
		t.Errorf("LibraryBackend = %q", cfg.LibraryBackend)
	}
	if cfg.DownloadDir != "/music/saved" {
		t.Errorf("DownloadDir = %q", cfg.DownloadDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"shards", func(c *Config) { c.ShardCount = 0 }},
		{"volume", func(c *Config) { c.DefaultVolume = 300 }},
		{"history", func(c *Config) { c.HistoryLimit = 0 }},
		{"poll", func(c *Config) { c.PollIntervalMS = 0 }},
		{"attempts", func(c *Config) { c.StartAttempts = 0 }},
		{"grace", func(c *Config) { c.ShortPlayGraceMS = -1 }},
		{"start grace", func(c *Config) { c.StartFailureGraceMS = -1 }},
		{"backend", func(c *Config) { c.LibraryBackend = "sqlite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func valid() *Config {
	return &Config{
		ShardCount:          1,
		DefaultVolume:       100,
		HistoryLimit:        50,
		PollIntervalMS:      500,
		StartPollIntervalMS: 100,
		StartAttempts:       20,
		EndDebounceMS:       500,
		LibraryBackend:      LibraryBackendAuto,
	}
}
