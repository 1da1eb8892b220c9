package music

import (
	"context"
	"fmt"
	"strconv"

	internalredis "github.com/hxnx/moonplayer/internal/redis"
	redislib "github.com/redis/go-redis/v9"
)

const settingsKeyPrefix = "music:settings:"

// SettingsStore persists per-owner playback settings in a redis hash.
type SettingsStore struct {
	client   *redislib.Client
	defaults Settings
}

func NewSettingsStore(client *redislib.Client, defaults Settings) *SettingsStore {
	return &SettingsStore{client: client, defaults: defaults}
}

func NewSettingsStoreFromDefault(defaults Settings) *SettingsStore {
	return NewSettingsStore(internalredis.Client(), defaults)
}

func (s *SettingsStore) ensureClient() error {
	if s.client != nil {
		return nil
	}

	s.client = internalredis.Client()
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	return nil
}

// Get returns the stored settings, falling back to the defaults for missing
// fields or when redis is unavailable.
func (s *SettingsStore) Get(ctx context.Context, owner string) (Settings, error) {
	settings := s.defaults
	if err := s.ensureClient(); err != nil {
		return settings, err
	}
	if owner == "" {
		return settings, fmt.Errorf("owner is required")
	}

	data, err := s.client.HGetAll(ctx, settingsKey(owner)).Result()
	if err != nil {
		return settings, err
	}

	return parseSettings(data, settings), nil
}

func (s *SettingsStore) Set(ctx context.Context, owner string, settings Settings) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	if owner == "" {
		return fmt.Errorf("owner is required")
	}

	values := map[string]interface{}{
		"auto_play": strconv.FormatBool(settings.AutoPlay),
		"volume":    strconv.Itoa(settings.Volume),
	}

	return s.client.HSet(ctx, settingsKey(owner), values).Err()
}

func parseSettings(data map[string]string, settings Settings) Settings {
	if v, ok := data["auto_play"]; ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			settings.AutoPlay = parsed
		}
	}
	if v, ok := data["volume"]; ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			settings.Volume = parsed
		}
	}
	return settings
}

func settingsKey(owner string) string {
	return settingsKeyPrefix + owner
}
