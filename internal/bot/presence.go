package bot

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const presenceUpdateInterval = 60 * time.Second

func (b *Bot) runPresence() {
	ticker := time.NewTicker(presenceUpdateInterval)
	defer ticker.Stop()

	b.updatePresence()
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.updatePresence()
		}
	}
}

func presenceStatus(active, guilds int) string {
	if active == 0 {
		return fmt.Sprintf("/play • %d servers", guilds)
	}
	return fmt.Sprintf("🎶 in %d of %d servers", active, guilds)
}

func (b *Bot) updatePresence() {
	active := b.players.ActiveCount()
	for _, s := range b.sessions {
		guildCount := 0
		if s.State != nil {
			guildCount = len(s.State.Guilds)
		}

		if err := s.UpdateGameStatus(0, presenceStatus(active, guildCount)); err != nil {
			log.Debugf("failed to update presence: %v", err)
		}
	}
}
