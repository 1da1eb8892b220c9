package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var ErrNotInitialized = errors.New("redis client not initialized")

var (
	client *redislib.Client
	once   sync.Once
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Init connects once, retrying the first ping with exponential backoff. A
// failed Init leaves Client() nil so callers fall back to memory storage.
func Init(cfg Config) (*redislib.Client, error) {
	var initErr error

	once.Do(func() {
		client = redislib.NewClient(&redislib.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		attempts := 5
		backoff := 200 * time.Millisecond

		for attempt := 1; attempt <= attempts; attempt++ {
			initErr = Ping(context.Background())
			if initErr == nil {
				log.Debugf("Redis connected at %s", cfg.Addr())
				return
			}

			log.Debugf("Redis ping %d/%d failed: %v", attempt, attempts, initErr)
			if attempt < attempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}

		_ = client.Close()
		client = nil
	})

	if client == nil && initErr == nil {
		return nil, ErrNotInitialized
	}

	return client, initErr
}

func Ping(ctx context.Context) error {
	if client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

func Client() *redislib.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
