package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hxnx/moonplayer/internal/playback"
)

const (
	barWidth      = 30
	playlistRows  = 8
	minPanelWidth = 48
)

const helpText = "space pause • n/p next/prev • ←/→ seek • a auto-play • f favorite • d download • s stop • r replay • q quit"

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := max(minPanelWidth, m.width-4)
	sections := []string{
		titleStyle.Render("🌙 MoonPlayer"),
		"",
		m.nowPlaying(),
		"",
		m.playlistView(),
	}
	if m.status != "" {
		style := mutedStyle
		if m.statusErr {
			style = errorStyle
		}
		sections = append(sections, "", style.Render(m.status))
	}

	panel := panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return panel + "\n" + dimStyle.Render(helpText) + "\n"
}

func (m Model) displayProgress() playback.Progress {
	if m.dragging {
		return playback.Progress{Elapsed: m.dragTarget, Total: m.snap.Progress.Total}
	}
	return m.snap.Progress
}

func (m Model) nowPlaying() string {
	if !m.snap.HasTrack {
		return mutedStyle.Render("Nothing loaded")
	}

	track := m.snap.Track
	title := trackStyle.Render(track.Title)
	if track.Title == "" {
		title = trackStyle.Render(track.DisplayName())
	}
	artist := mutedStyle.Render(track.Artist)

	p := m.displayProgress()
	progress := fmt.Sprintf("%s  %s", progressBar(p.Fraction(), barWidth), p.Label())

	state := m.snap.State.String()
	if m.dragging {
		state = "seeking"
	}
	autoPlay := "off"
	if m.snap.AutoPlay {
		autoPlay = "on"
	}
	status := fmt.Sprintf("%s • auto-play %s • %d/%d",
		stateStyle(state).Render(state), autoPlay, m.snap.Cursor+1, m.snap.Length)

	return lipgloss.JoinVertical(lipgloss.Left, title, artist, "", progress, status)
}

// progressBar draws a bar of width cells filled to fraction.
func progressBar(fraction float64, width int) string {
	fraction = max(0.0, min(1.0, fraction))
	filled := int(fraction * float64(width))
	return cursorStyle.Render(strings.Repeat("━", filled)) + dimStyle.Render(strings.Repeat("─", width-filled))
}

// playlistWindow returns the [start, end) rows to show so that cursor stays
// visible.
func playlistWindow(cursor, total, rows int) (int, int) {
	if total <= rows {
		return 0, total
	}
	start := max(0, cursor-rows/2)
	end := start + rows
	if end > total {
		end = total
		start = end - rows
	}
	return start, end
}

func (m Model) playlistView() string {
	if len(m.tracks) == 0 {
		return dimStyle.Render("Playlist is empty")
	}

	start, end := playlistWindow(m.snap.Cursor, len(m.tracks), playlistRows)
	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		t := m.tracks[i]
		line := fmt.Sprintf("%2d. %s", i+1, t.DisplayName())
		if t.Duration > 0 {
			line += dimStyle.Render("  " + clock(t.Duration))
		}
		if i == m.snap.Cursor {
			line = cursorStyle.Render("▶ " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if end < len(m.tracks) {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  …%d more", len(m.tracks)-end)))
	}
	return strings.Join(lines, "\n")
}

func clock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
