package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hxnx/moonplayer/internal/backend"
	"github.com/hxnx/moonplayer/internal/engine/speaker"
	"github.com/hxnx/moonplayer/internal/library"
	"github.com/hxnx/moonplayer/internal/logger"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	"github.com/hxnx/moonplayer/internal/tui"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const localOwner = "local"

var errNothingToPlay = errors.New("nothing to play: pass files, URLs or search terms, or add favorites first")

var playCmd = &cobra.Command{
	Use:   "play [file|url|query]...",
	Short: "Play through the local speakers",
	Long: `Play through the local speakers with a terminal UI.

Each argument is a local file, a URL or a search query. MP3 and WAV are
decoded directly; other formats, including most streaming sources, need
ffmpeg (FFMPEG_BINARY). Without arguments the favorites of the local library
are played. Pressing d saves the current track to DOWNLOAD_DIR.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("log-file", "", "Log file (default: TEMP_DIR/moonplayer.log)")
	playCmd.Flags().Bool("favorites", false, "Append the local favorites to the playlist")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !speaker.AudioAvailable {
		return errors.New("this build has no audio output")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile := lo.Must(cmd.Flags().GetString("log-file"))
	if logFile == "" {
		logFile = filepath.Join(cfg.TempDir, "moonplayer.log")
	}
	f, err := logger.ToFile(logFile)
	if err != nil {
		return err
	}
	defer f.Close()

	be, err := backend.Open(cfg)
	if err != nil {
		return err
	}
	defer be.Close()
	be.Service.WithLocalFiles()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	withFavorites := lo.Must(cmd.Flags().GetBool("favorites"))
	tracks, err := buildPlaylist(ctx, be, args, withFavorites || len(args) == 0)
	if err != nil {
		return err
	}

	settings, err := be.Settings.Get(ctx, localOwner)
	if err != nil {
		log.Debugf("using default settings: %v", err)
	}

	engine := speaker.NewEngine(cfg.FFmpegBinary)
	engine.SetVolume(settings.Volume)

	recorder := library.NewRecorder(be.Library, localOwner)
	recorder.Start(ctx)
	defer recorder.Close()

	ctrl := playback.NewController(engine, be.Service, cfg.Timings()).WithObserver(recorder)
	ctrl.SetAutoPlay(settings.AutoPlay)
	ctrl.SetPlaylist(tracks, 0)
	defer func() { _ = ctrl.Stop() }()

	model := tui.NewModel(tui.Session{
		Controller:  ctrl,
		Library:     be.Library,
		Settings:    be.Settings,
		Downloader:  be.Service,
		DownloadDir: cfg.DownloadDir,
		Owner:       localOwner,
		Volume:      settings.Volume,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// buildPlaylist resolves every argument, skipping the ones that fail.
func buildPlaylist(ctx context.Context, be *backend.Backend, inputs []string, withFavorites bool) ([]music.Track, error) {
	var tracks []music.Track
	for _, input := range inputs {
		track, err := be.Service.ResolveInput(ctx, input, music.TrackSourceUnknown)
		if err != nil {
			fmt.Printf("skipping %q: %v\n", input, err)
			continue
		}
		tracks = append(tracks, track)
	}

	if withFavorites {
		favorites, err := be.Library.Favorites(ctx, localOwner)
		if err != nil {
			return nil, fmt.Errorf("load favorites: %w", err)
		}
		tracks = append(tracks, favorites...)
	}

	tracks = lo.UniqBy(tracks, func(t music.Track) string { return t.Key() })
	if len(tracks) == 0 {
		return nil, errNothingToPlay
	}
	return tracks, nil
}
