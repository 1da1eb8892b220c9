package actions

import (
	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	log "github.com/sirupsen/logrus"
)

// Deferred acknowledges the interaction before running fn, which may block on
// source resolution or an engine load, and reports its outcome as a followup.
func Deferred(s *discordgo.Session, i *discordgo.InteractionCreate, fn func() (string, error)) {
	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("interaction defer failed: %v", err)
		return
	}
	msg, err := fn()
	if err != nil {
		shared.FollowupEphemeral(s, i, ErrorMessage(err))
		return
	}
	shared.FollowupEphemeral(s, i, msg)
}
