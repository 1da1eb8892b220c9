package speaker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// openSource returns audio beep can decode. MP3 and WAV pass through; any
// other container, such as the webm or m4a streams yt-dlp picks, is
// converted to WAV by ffmpeg.
func openSource(ctx context.Context, client *http.Client, ffmpeg, source string) ([]byte, sourceKind, error) {
	data, kind, err := readSource(ctx, client, source)
	if !errors.Is(err, ErrUnsupported) {
		return data, kind, err
	}

	converted, terr := transcode(ctx, ffmpeg, data)
	if terr != nil {
		return nil, 0, terr
	}
	return converted, kindWAV, nil
}

func transcode(ctx context.Context, ffmpeg string, data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "moonplayer-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "source")
	out := filepath.Join(dir, "decoded.wav")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpeg, transcodeArgs(in, out)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v: %s", ErrUnsupported, err, strings.TrimSpace(stderr.String()))
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg produced no output", ErrUnsupported)
	}
	if info.Size() > maxSourceBytes {
		return nil, fmt.Errorf("decoded audio exceeds %d bytes", maxSourceBytes)
	}
	return os.ReadFile(out)
}

// The output is a regular file so ffmpeg can finalize the WAV header sizes.
func transcodeArgs(in, out string) []string {
	return []string{
		"-y",
		"-loglevel", "error",
		"-i", in,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		"-f", "wav",
		out,
	}
}
