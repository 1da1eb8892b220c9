package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hxnx/moonplayer/internal/playback"
	"github.com/joho/godotenv"
)

const (
	LibraryBackendAuto     = "auto"
	LibraryBackendPostgres = "postgres"
	LibraryBackendRedis    = "redis"
	LibraryBackendMemory   = "memory"
)

type Config struct {
	DiscordToken  string
	ApplicationID string

	GuildID    string
	OwnerID    string
	ShardCount int

	LogLevel  string
	LogFormat string

	AutoLeaveTimeout int
	DefaultVolume    int
	AutoPlay         bool
	HistoryLimit     int
	StreamCacheTTL   int
	LibraryBackend   string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	SpotifyClientID     string
	SpotifyClientSecret string

	YTDLPBinary  string
	FFmpegBinary string
	TempDir      string
	DownloadDir  string

	PollIntervalMS       int
	StartPollIntervalMS  int
	StartAttempts        int
	EndDebounceMS        int
	ShortPlayThresholdMS int
	ShortPlayGraceMS     int
	FailureGraceMS       int
	StartFailureGraceMS  int
}

// Load reads the environment, optionally seeded from a .env file, and checks
// value ranges. Discord credentials are checked separately by ValidateBot.
func Load() (*Config, error) {
	_ = godotenv.Load()

	defaults := playback.DefaultTimings()

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),

		GuildID:    os.Getenv("DISCORD_GUILD_ID"),
		OwnerID:    os.Getenv("DISCORD_OWNER_ID"),
		ShardCount: getEnvAsIntWithDefault("SHARD_COUNT", 1),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		AutoLeaveTimeout: getEnvAsIntWithDefault("AUTO_LEAVE_TIMEOUT", 300),
		DefaultVolume:    getEnvAsIntWithDefault("DEFAULT_VOLUME", 100),
		AutoPlay:         getEnvAsBoolWithDefault("AUTO_PLAY", true),
		HistoryLimit:     getEnvAsIntWithDefault("HISTORY_LIMIT", 50),
		StreamCacheTTL:   getEnvAsIntWithDefault("STREAM_CACHE_TTL", 7200),
		LibraryBackend:   strings.ToLower(getEnvWithDefault("LIBRARY_BACKEND", LibraryBackendAuto)),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnvAsIntWithDefault("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvAsIntWithDefault("REDIS_PORT", 6379),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", 0),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),

		YTDLPBinary:  getEnvWithDefault("YTDLP_BINARY", "yt-dlp"),
		FFmpegBinary: getEnvWithDefault("FFMPEG_BINARY", "ffmpeg"),
		TempDir:      getEnvWithDefault("TEMP_DIR", os.TempDir()),
		DownloadDir:  os.Getenv("DOWNLOAD_DIR"),

		PollIntervalMS:       getEnvAsIntWithDefault("PLAYBACK_POLL_INTERVAL_MS", ms(defaults.PollInterval)),
		StartPollIntervalMS:  getEnvAsIntWithDefault("PLAYBACK_START_POLL_INTERVAL_MS", ms(defaults.StartPollInterval)),
		StartAttempts:        getEnvAsIntWithDefault("PLAYBACK_START_ATTEMPTS", defaults.StartAttempts),
		EndDebounceMS:        getEnvAsIntWithDefault("PLAYBACK_END_DEBOUNCE_MS", ms(defaults.EndDebounce)),
		ShortPlayThresholdMS: getEnvAsIntWithDefault("PLAYBACK_SHORT_PLAY_THRESHOLD_MS", ms(defaults.ShortPlayThreshold)),
		ShortPlayGraceMS:     getEnvAsIntWithDefault("PLAYBACK_SHORT_PLAY_GRACE_MS", ms(defaults.ShortPlayGrace)),
		FailureGraceMS:       getEnvAsIntWithDefault("PLAYBACK_FAILURE_GRACE_MS", ms(defaults.FailureGrace)),
		StartFailureGraceMS:  getEnvAsIntWithDefault("PLAYBACK_START_FAILURE_GRACE_MS", ms(defaults.StartFailureGrace)),
	}

	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(cfg.TempDir, "downloads")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DefaultVolume < 0 || c.DefaultVolume > 200 {
		return errors.New("DEFAULT_VOLUME must be between 0 and 200")
	}

	if c.ShardCount < 1 {
		return errors.New("SHARD_COUNT must be at least 1")
	}

	if c.HistoryLimit < 1 {
		return errors.New("HISTORY_LIMIT must be at least 1")
	}

	if c.PollIntervalMS < 1 || c.StartPollIntervalMS < 1 || c.EndDebounceMS < 1 {
		return errors.New("PLAYBACK_*_INTERVAL_MS and PLAYBACK_END_DEBOUNCE_MS must be positive")
	}

	if c.StartAttempts < 1 {
		return errors.New("PLAYBACK_START_ATTEMPTS must be at least 1")
	}

	if c.ShortPlayThresholdMS < 0 || c.ShortPlayGraceMS < 0 || c.FailureGraceMS < 0 || c.StartFailureGraceMS < 0 {
		return errors.New("PLAYBACK grace and threshold values must not be negative")
	}

	switch c.LibraryBackend {
	case LibraryBackendAuto, LibraryBackendPostgres, LibraryBackendRedis, LibraryBackendMemory:
	default:
		return fmt.Errorf("LIBRARY_BACKEND must be one of auto, postgres, redis, memory (got %q)", c.LibraryBackend)
	}

	return nil
}

// ValidateBot additionally requires what the Discord front-end needs.
func (c *Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}

	if c.ApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is required")
	}

	return c.Validate()
}

func (c *Config) IsDevelopment() bool {
	return c.GuildID != ""
}

func (c *Config) HasDatabase() bool {
	return c.DBHost != "" && c.DBName != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisHost != ""
}

func (c *Config) HasSpotify() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

func (c *Config) Timings() playback.Timings {
	t := playback.DefaultTimings()
	t.PollInterval = time.Duration(c.PollIntervalMS) * time.Millisecond
	t.StartPollInterval = time.Duration(c.StartPollIntervalMS) * time.Millisecond
	t.StartAttempts = c.StartAttempts
	t.EndDebounce = time.Duration(c.EndDebounceMS) * time.Millisecond
	t.ShortPlayThreshold = time.Duration(c.ShortPlayThresholdMS) * time.Millisecond
	t.ShortPlayGrace = time.Duration(c.ShortPlayGraceMS) * time.Millisecond
	t.FailureGrace = time.Duration(c.FailureGraceMS) * time.Millisecond
	t.StartFailureGrace = time.Duration(c.StartFailureGraceMS) * time.Millisecond
	return t
}

func (c *Config) AutoLeave() time.Duration {
	return time.Duration(c.AutoLeaveTimeout) * time.Second
}

func (c *Config) StreamCacheDuration() time.Duration {
	return time.Duration(c.StreamCacheTTL) * time.Second
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func ms(d time.Duration) int {
	return int(d / time.Millisecond)
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c *Config) GetDBConfig() *DBConfig {
	return &DBConfig{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

func (c *Config) GetRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Enabled:  c.HasRedis(),
	}
}
