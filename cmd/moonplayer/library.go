package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hxnx/moonplayer/internal/backend"
	"github.com/hxnx/moonplayer/internal/music"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const libraryTimeout = 10 * time.Second

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played tracks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner := lo.Must(cmd.Flags().GetString("owner"))
		limit := lo.Must(cmd.Flags().GetInt("limit"))
		return withLibrary(cmd, func(ctx context.Context, be *backend.Backend) error {
			tracks, err := be.Library.History(ctx, owner, limit)
			if err != nil {
				return err
			}
			renderTracks(os.Stdout, "History", tracks)
			return nil
		})
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorite tracks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner := lo.Must(cmd.Flags().GetString("owner"))
		return withLibrary(cmd, func(ctx context.Context, be *backend.Backend) error {
			tracks, err := be.Library.Favorites(ctx, owner)
			if err != nil {
				return err
			}
			renderTracks(os.Stdout, "Favorites", tracks)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, favoritesCmd} {
		c.Flags().String("owner", localOwner, "Library owner: a guild ID, or local")
		rootCmd.AddCommand(c)
	}
	historyCmd.Flags().Int("limit", 20, "Number of entries")
}

func withLibrary(cmd *cobra.Command, fn func(ctx context.Context, be *backend.Backend) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	be, err := backend.Open(cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), libraryTimeout)
	defer cancel()
	return fn(ctx, be)
}

func renderTracks(w io.Writer, title string, tracks []music.Track) {
	if len(tracks) == 0 {
		fmt.Fprintf(w, "%s: empty\n", title)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"#", "Title", "Artist", "Source", "Length"})
	for i, track := range tracks {
		length := "live"
		if track.Duration > 0 {
			secs := int(track.Duration / time.Second)
			length = fmt.Sprintf("%02d:%02d", secs/60, secs%60)
		}
		t.AppendRow(table.Row{i + 1, text.Trim(track.Title, 60), track.Artist, string(track.Source), length})
	}
	t.Render()
}
