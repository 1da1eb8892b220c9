package music

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadSavesStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mp4")
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "downloads")
	svc := NewService(&stubResolver{}, nil)
	track := Track{ID: "a", Title: "AC/DC: Live?", Artist: "Band", Source: TrackSourceYouTube, StreamURL: srv.URL + "/stream"}

	path, err := svc.Download(context.Background(), track, dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "AC_DC_ Live_ - Band.m4a"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("data = %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}

func TestDownloadReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusForbidden)
	}))
	defer srv.Close()

	dir := t.TempDir()
	svc := NewService(&stubResolver{}, nil)
	track := Track{ID: "a", Title: "x", Source: TrackSourceYouTube, StreamURL: srv.URL}

	if _, err := svc.Download(context.Background(), track, dir); !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("err = %v, want ErrDownloadFailed", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("files left behind: %v", entries)
	}
}

func TestDownloadLocalTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	local := Track{ID: path, URL: path, Source: TrackSourceLocal}

	got, err := NewService(nil, nil).WithLocalFiles().Download(context.Background(), local, t.TempDir())
	if err != nil || got != path {
		t.Fatalf("got %q, %v", got, err)
	}

	if _, err := NewService(nil, nil).Download(context.Background(), local, t.TempDir()); !errors.Is(err, ErrLocalDisabled) {
		t.Fatalf("err = %v, want ErrLocalDisabled", err)
	}
}

func TestAudioExtension(t *testing.T) {
	tests := []struct {
		contentType string
		url         string
		want        string
	}{
		{"audio/webm; codecs=opus", "https://x/videoplayback", "webm"},
		{"audio/mpeg", "https://x/a", "mp3"},
		{"application/octet-stream", "https://x/a.opus?sig=1", "opus"},
		{"", "https://x/videoplayback?mime=audio%2Fm4a", "m4a"},
		{"", "https://x/a", "mp3"},
	}
	for _, tt := range tests {
		if got := audioExtension(tt.contentType, tt.url); got != tt.want {
			t.Errorf("audioExtension(%q, %q) = %q, want %q", tt.contentType, tt.url, got, tt.want)
		}
	}
}

func TestDownloadName(t *testing.T) {
	if got := downloadName(Track{Title: " ..."}); got != "track" {
		t.Errorf("got %q, want track", got)
	}
	if got := downloadName(Track{Title: "a\tb"}); got != "a_b" {
		t.Errorf("got %q", got)
	}
}
