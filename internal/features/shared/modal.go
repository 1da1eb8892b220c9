package shared

import "github.com/bwmarrin/discordgo"

// ModalInputValue returns the value of the text input customID.
func ModalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		row, ok := asActionsRow(component)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			switch input := inner.(type) {
			case discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			case *discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			}
		}
	}
	return ""
}

// ModalSelectValue returns the first selected value of the select menu
// customID, whether it sits in an action row or inside a label.
func ModalSelectValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		if value, ok := selectValue(component, customID); ok {
			return value
		}
		row, ok := asActionsRow(component)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if value, ok := selectValue(inner, customID); ok {
				return value
			}
		}
	}
	return ""
}

func asActionsRow(component discordgo.MessageComponent) (discordgo.ActionsRow, bool) {
	switch r := component.(type) {
	case discordgo.ActionsRow:
		return r, true
	case *discordgo.ActionsRow:
		return *r, true
	default:
		return discordgo.ActionsRow{}, false
	}
}

func selectValue(component discordgo.MessageComponent, customID string) (string, bool) {
	switch c := component.(type) {
	case discordgo.SelectMenu:
		return menuValue(c, customID)
	case *discordgo.SelectMenu:
		return menuValue(*c, customID)
	case discordgo.Label:
		return selectValue(c.Component, customID)
	case *discordgo.Label:
		return selectValue(c.Component, customID)
	}
	return "", false
}

func menuValue(menu discordgo.SelectMenu, customID string) (string, bool) {
	if menu.CustomID != customID || len(menu.Values) == 0 {
		return "", false
	}
	return menu.Values[0], true
}
