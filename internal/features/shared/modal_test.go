package shared

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestModalValues(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: "search",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "query", Value: "lofi"},
			}},
			&discordgo.Label{Label: "Source", Component: &discordgo.SelectMenu{
				CustomID: "source",
				Values:   []string{"soundcloud"},
			}},
		},
	}

	if got := ModalInputValue(data, "query"); got != "lofi" {
		t.Fatalf("query = %q", got)
	}
	if got := ModalSelectValue(data, "source"); got != "soundcloud" {
		t.Fatalf("source = %q", got)
	}
	if got := ModalInputValue(data, "missing"); got != "" {
		t.Fatalf("missing = %q", got)
	}
}
