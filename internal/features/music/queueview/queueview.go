package queueview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/moonplayer/internal/features/shared"
	"github.com/hxnx/moonplayer/internal/music"
)

const (
	CustomIDPrefix = "music_queue_page"
	PlayCustomID   = "music_queue_play"
	DefaultPerPage = 10
	MaxPerPage     = 25
)

type PageInfo struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	StartIndex int
	EndIndex   int
}

// Paginate clamps page and perPage and returns the slice bounds they select.
func Paginate(total, page, perPage int) PageInfo {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = clamp(perPage, 1, MaxPerPage)
	totalPages := max(1, int(math.Ceil(float64(total)/float64(perPage))))
	page = clamp(page, 1, totalPages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)

	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		StartIndex: start,
		EndIndex:   end,
	}
}

// BuildQueueComponents renders one page of the playlist. cursor marks the
// current entry, or -1 for none.
func BuildQueueComponents(tracks []music.Track, cursor int, page int, perPage int) ([]discordgo.MessageComponent, PageInfo) {
	info := Paginate(len(tracks), page, perPage)

	lines := make([]string, 0, info.EndIndex-info.StartIndex)
	options := make([]discordgo.SelectMenuOption, 0, info.EndIndex-info.StartIndex)
	for i := info.StartIndex; i < info.EndIndex; i++ {
		marker := fmt.Sprintf("%d.", i+1)
		if i == cursor {
			marker = "▶️"
		}
		lines = append(lines, fmt.Sprintf("%s %s", marker, shared.TrackLine(tracks[i])))
		options = append(options, discordgo.SelectMenuOption{
			Label:       shared.Truncate(fmt.Sprintf("%d. %s", i+1, tracks[i].DisplayName()), 100),
			Description: shared.FormatDuration(tracks[i].Duration),
			Value:       strconv.Itoa(i),
		})
	}

	listContent := "The playlist is empty."
	if len(lines) > 0 {
		listContent = strings.Join(lines, "\n")
	}

	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	inner := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "📋 **Playlist**"},
		discordgo.TextDisplay{Content: fmt.Sprintf("Page **%d/%d** · **%d** track(s)", info.Page, info.TotalPages, info.TotalItems)},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
		discordgo.TextDisplay{Content: listContent},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}
	if len(options) > 0 {
		inner = append(inner, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    PlayCustomID,
					Placeholder: "Play an entry",
					Options:     options,
				},
			},
		})
	}
	inner = append(inner, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Previous",
				CustomID: MakeQueuePageCustomID(info.Page-1, info.PerPage),
				Disabled: info.Page <= 1,
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Next",
				CustomID: MakeQueuePageCustomID(info.Page+1, info.PerPage),
				Disabled: info.Page >= info.TotalPages,
			},
		},
	})

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components:  inner,
		},
	}, info
}

func MakeQueuePageCustomID(page int, perPage int) string {
	if page < 1 {
		page = 1
	}
	perPage = clamp(perPage, 1, MaxPerPage)
	return fmt.Sprintf("%s:%d:%d", CustomIDPrefix, page, perPage)
}

func ParseQueuePageCustomID(customID string) (page int, perPage int, ok bool) {
	if !strings.HasPrefix(customID, CustomIDPrefix+":") {
		return 0, 0, false
	}

	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return 0, 0, false
	}

	pageVal, err := strconv.Atoi(parts[1])
	if err != nil || pageVal < 1 {
		return 0, 0, false
	}

	perPageVal, err := strconv.Atoi(parts[2])
	if err != nil || perPageVal < 1 {
		return 0, 0, false
	}

	return pageVal, clamp(perPageVal, 1, MaxPerPage), true
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
