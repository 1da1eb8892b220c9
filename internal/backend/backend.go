// Package backend opens the storage and resolver stack shared by the bot and
// the local player.
package backend

import (
	"errors"
	"fmt"

	"github.com/hxnx/moonplayer/config"
	"github.com/hxnx/moonplayer/internal/database"
	"github.com/hxnx/moonplayer/internal/library"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/redis"
	log "github.com/sirupsen/logrus"
)

var ErrBackendUnavailable = errors.New("library backend is not available")

type Backend struct {
	Library        *library.Library
	LibraryBackend string
	Service        *music.Service
	Settings       *music.SettingsStore
	Dashboards     *database.DashboardRepository

	hasDB    bool
	hasRedis bool
}

// Open connects to PostgreSQL and redis when configured. Connection failures
// are logged and degrade to in-memory storage, unless LIBRARY_BACKEND names
// the missing store explicitly.
func Open(cfg *config.Config) (*Backend, error) {
	b := &Backend{}

	if cfg.HasDatabase() && cfg.LibraryBackend != config.LibraryBackendMemory {
		dbCfg := cfg.GetDBConfig()
		err := database.Initialize(&database.Config{
			Host:     dbCfg.Host,
			Port:     dbCfg.Port,
			User:     dbCfg.User,
			Password: dbCfg.Password,
			DBName:   dbCfg.Name,
			SSLMode:  dbCfg.SSLMode,
		})
		if err != nil {
			log.Warnf("database initialization failed: %v", err)
		} else {
			b.hasDB = true
		}
	}

	if redisCfg := cfg.GetRedisConfig(); redisCfg.Enabled {
		_, err := redis.Init(redis.Config{
			Host:     redisCfg.Host,
			Port:     redisCfg.Port,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err != nil {
			log.Warnf("redis initialization failed: %v", err)
		} else {
			b.hasRedis = true
		}
	}

	kind, err := chooseLibrary(cfg.LibraryBackend, b.hasDB, b.hasRedis)
	if err != nil {
		b.Close()
		return nil, err
	}

	var store library.Store
	switch kind {
	case config.LibraryBackendPostgres:
		store = database.NewLibraryRepository()
	case config.LibraryBackendRedis:
		store = library.NewRedisStoreFromDefault()
	default:
		store = library.NewMemoryStore()
	}
	b.Library = library.New(store, cfg.HistoryLimit)
	b.LibraryBackend = kind

	resolver := music.NewYTDLPResolver(cfg.YTDLPBinary, cfg.TempDir)
	b.Service = music.NewService(resolver, music.NewStreamCacheFromDefault(cfg.StreamCacheDuration()))
	if cfg.HasSpotify() {
		b.Service = b.Service.WithSpotify(music.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret))
	}

	b.Settings = music.NewSettingsStoreFromDefault(Defaults(cfg))
	b.Dashboards = database.NewDashboardRepository()

	log.WithFields(log.Fields{
		"library":  kind,
		"postgres": b.hasDB,
		"redis":    b.hasRedis,
		"spotify":  cfg.HasSpotify(),
	}).Info("backend ready")
	return b, nil
}

// Defaults are the session settings of an owner with nothing stored.
func Defaults(cfg *config.Config) music.Settings {
	return music.Settings{AutoPlay: cfg.AutoPlay, Volume: cfg.DefaultVolume}
}

// chooseLibrary picks the store for favorites and history. auto prefers
// PostgreSQL, then redis, then memory.
func chooseLibrary(requested string, hasDB, hasRedis bool) (string, error) {
	switch requested {
	case config.LibraryBackendPostgres:
		if !hasDB {
			return "", fmt.Errorf("%w: postgres", ErrBackendUnavailable)
		}
		return requested, nil
	case config.LibraryBackendRedis:
		if !hasRedis {
			return "", fmt.Errorf("%w: redis", ErrBackendUnavailable)
		}
		return requested, nil
	case config.LibraryBackendMemory:
		return requested, nil
	}

	switch {
	case hasDB:
		return config.LibraryBackendPostgres, nil
	case hasRedis:
		return config.LibraryBackendRedis, nil
	default:
		return config.LibraryBackendMemory, nil
	}
}

func (b *Backend) Close() {
	if err := database.Close(); err != nil {
		log.Warnf("failed to close database: %v", err)
	}
	if err := redis.Close(); err != nil {
		log.Warnf("failed to close redis: %v", err)
	}
}
