// Package tui is the terminal front-end of the local player.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hxnx/moonplayer/internal/library"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	log "github.com/sirupsen/logrus"
)

const (
	tickInterval  = 200 * time.Millisecond
	dragStep      = 5 * time.Second
	dragRelease   = 800 * time.Millisecond
	actionTimeout = 60 * time.Second
	saveTimeout   = 10 * time.Minute
	statusTTL     = 4 * time.Second
)

// Downloader saves a track's audio to a directory and returns the file path.
type Downloader interface {
	Download(ctx context.Context, track music.Track, dir string) (string, error)
}

// Session is the playback state the terminal drives.
type Session struct {
	Controller  *playback.Controller
	Library     *library.Library
	Settings    *music.SettingsStore
	Downloader  Downloader
	DownloadDir string
	Owner       string
	Volume      int
}

type Model struct {
	session Session
	snap    playback.Snapshot
	tracks  []music.Track

	dragging   bool
	dragTarget time.Duration
	lastDrag   time.Time

	status      string
	statusErr   bool
	statusUntil time.Time

	width    int
	quitting bool
	now      func() time.Time
}

func NewModel(session Session) Model {
	if session.Owner == "" {
		session.Owner = "local"
	}
	return Model{
		session: session,
		snap:    session.Controller.Snapshot(),
		tracks:  session.Controller.Playlist(),
		now:     time.Now,
	}
}

type tickMsg time.Time

type actionMsg struct {
	text string
	err  error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// run executes a blocking controller call off the update loop.
func run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return runWithin(actionTimeout, fn)
}

func runWithin(timeout time.Duration, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := fn(ctx)
		return actionMsg{text: text, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if len(m.tracks) > 0 && !m.snap.HasTrack {
		ctrl := m.session.Controller
		cmds = append(cmds, run(func(ctx context.Context) (string, error) {
			return "", ctrl.PlayAt(ctx, 0)
		}))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		if m.dragging && m.now().Sub(m.lastDrag) >= dragRelease {
			m.releaseDrag()
		}
		return m, tick()

	case actionMsg:
		if msg.err != nil {
			log.Debugf("tui action failed: %v", msg.err)
			m.setStatus(msg.err.Error(), true)
		} else if msg.text != "" {
			m.setStatus(msg.text, false)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.session.Controller

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		_ = ctrl.Stop()
		return m, tea.Quit

	case " ":
		return m, run(func(ctx context.Context) (string, error) {
			return "", ctrl.PauseResume(ctx)
		})

	case "n":
		return m, run(func(ctx context.Context) (string, error) {
			return "", ctrl.Next(ctx)
		})

	case "p":
		return m, run(func(ctx context.Context) (string, error) {
			return "", ctrl.Previous(ctx)
		})

	case "r":
		return m, run(func(ctx context.Context) (string, error) {
			return "", ctrl.Replay(ctx)
		})

	case "s":
		if err := ctrl.Stop(); err != nil {
			m.setStatus(err.Error(), true)
		}
		m.dragging = false
		m.refresh()
		return m, nil

	case "left", "right":
		dir := time.Duration(1)
		if msg.String() == "left" {
			dir = -1
		}
		m.drag(dir * dragStep)
		return m, nil

	case "enter":
		if m.dragging {
			m.releaseDrag()
		}
		return m, nil

	case "a":
		enabled := !ctrl.AutoPlay()
		ctrl.SetAutoPlay(enabled)
		m.refresh()
		return m, m.saveSettings(enabled)

	case "f":
		return m, m.toggleFavorite()

	case "d":
		return m, m.download()
	}
	return m, nil
}

// drag moves the held seek target. The controller keeps playing but stops
// publishing progress until the drag is released.
func (m *Model) drag(delta time.Duration) {
	if !m.snap.HasTrack {
		return
	}
	if !m.dragging {
		m.dragging = true
		m.dragTarget = m.snap.Progress.Elapsed
		m.session.Controller.SetDragging(true)
	}
	m.dragTarget = max(0, min(m.snap.Progress.Total, m.dragTarget+delta))
	m.lastDrag = m.now()
}

func (m *Model) releaseDrag() {
	m.dragging = false
	if err := m.session.Controller.Seek(m.dragTarget); err != nil {
		m.session.Controller.SetDragging(false)
		m.setStatus(err.Error(), true)
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.snap = m.session.Controller.Snapshot()
	m.tracks = m.session.Controller.Playlist()
	if !m.statusUntil.IsZero() && m.now().After(m.statusUntil) {
		m.status = ""
		m.statusUntil = time.Time{}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
	m.statusUntil = m.now().Add(statusTTL)
}

func (m Model) saveSettings(autoPlay bool) tea.Cmd {
	store := m.session.Settings
	owner := m.session.Owner
	volume := m.session.Volume
	label := "auto-play off"
	if autoPlay {
		label = "auto-play on"
	}
	return run(func(ctx context.Context) (string, error) {
		if store != nil {
			if err := store.Set(ctx, owner, music.Settings{AutoPlay: autoPlay, Volume: volume}); err != nil {
				log.Warnf("failed to persist settings: %v", err)
			}
		}
		return label, nil
	})
}

func (m Model) toggleFavorite() tea.Cmd {
	track, ok := m.session.Controller.Current()
	lib := m.session.Library
	if !ok || lib == nil {
		return nil
	}
	owner := m.session.Owner
	return run(func(ctx context.Context) (string, error) {
		added, err := lib.ToggleFavorite(ctx, owner, track)
		if err != nil {
			return "", err
		}
		if added {
			return fmt.Sprintf("★ added %s", track.DisplayName()), nil
		}
		return fmt.Sprintf("☆ removed %s", track.DisplayName()), nil
	})
}

func (m *Model) download() tea.Cmd {
	track, ok := m.session.Controller.Current()
	saver := m.session.Downloader
	if !ok || saver == nil {
		return nil
	}
	dir := m.session.DownloadDir
	m.setStatus(fmt.Sprintf("⬇ saving %s", track.DisplayName()), false)
	return runWithin(saveTimeout, func(ctx context.Context) (string, error) {
		path, err := saver.Download(ctx, track, dir)
		if err != nil {
			return "", err
		}
		return "saved to " + path, nil
	})
}
