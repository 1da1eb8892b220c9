package speaker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestReadSourceFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "song.WAV")
	if err := os.WriteFile(file, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, kind, err := readSource(context.Background(), http.DefaultClient, file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "RIFF" || kind != kindWAV {
		t.Fatalf("data=%q kind=%v", data, kind)
	}

	if _, _, err := readSource(context.Background(), http.DefaultClient, filepath.Join(dir, "missing.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadSourceHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed":
			w.Header().Set("Content-Type", "audio/mpeg")
		case "/missing":
			http.NotFound(w, r)
			return
		default:
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		_, _ = w.Write([]byte("ID3"))
	}))
	defer srv.Close()

	ctx := context.Background()

	if _, kind, err := readSource(ctx, srv.Client(), srv.URL+"/typed"); err != nil || kind != kindMP3 {
		t.Fatalf("typed: kind=%v err=%v", kind, err)
	}
	if _, kind, err := readSource(ctx, srv.Client(), srv.URL+"/by-name.wav"); err != nil || kind != kindWAV {
		t.Fatalf("by name: kind=%v err=%v", kind, err)
	}
	if _, _, err := readSource(ctx, srv.Client(), srv.URL+"/unknown.ogg"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("unknown: err=%v", err)
	}
	if _, _, err := readSource(ctx, srv.Client(), srv.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

// fakeFFmpeg writes a script that writes marker bytes to its last argument,
// the output path.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a unix shell")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "ffmpeg")
	body := "#!/bin/sh\nfor last; do :; done\nprintf 'RIFFconverted' > \"$last\"\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return script
}

func TestOpenSourceTranscodesOtherFormats(t *testing.T) {
	ffmpeg := fakeFFmpeg(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/webm")
		_, _ = w.Write([]byte("webm"))
	}))
	defer srv.Close()

	data, kind, err := openSource(context.Background(), srv.Client(), ffmpeg, srv.URL+"/videoplayback")
	if err != nil {
		t.Fatal(err)
	}
	if kind != kindWAV || string(data) != "RIFFconverted" {
		t.Fatalf("kind=%v data=%q", kind, data)
	}
}

func TestOpenSourcePassesMP3Through(t *testing.T) {
	file := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(file, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, kind, err := openSource(context.Background(), http.DefaultClient, "/nonexistent/ffmpeg", file)
	if err != nil {
		t.Fatal(err)
	}
	if kind != kindMP3 || string(data) != "ID3" {
		t.Fatalf("kind=%v data=%q", kind, data)
	}
}

func TestOpenSourceWithoutFFmpeg(t *testing.T) {
	file := filepath.Join(t.TempDir(), "song.m4a")
	if err := os.WriteFile(file, []byte("m4a"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := openSource(context.Background(), http.DefaultClient, "/nonexistent/ffmpeg", file)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestTranscodeArgsWriteWAVFile(t *testing.T) {
	args := transcodeArgs("/tmp/in", "/tmp/out.wav")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-i /tmp/in") || args[len(args)-1] != "/tmp/out.wav" {
		t.Fatalf("args = %v", args)
	}
	if !strings.Contains(joined, "-f wav") {
		t.Fatalf("args = %v", args)
	}
}
