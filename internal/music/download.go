package music

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var downloadClient = &http.Client{Timeout: 10 * time.Minute}

var ErrDownloadFailed = errors.New("download failed")

var audioExtensions = map[string]string{
	"audio/mpeg":  "mp3",
	"audio/mp3":   "mp3",
	"audio/mp4":   "m4a",
	"audio/m4a":   "m4a",
	"audio/webm":  "webm",
	"audio/ogg":   "ogg",
	"audio/opus":  "opus",
	"audio/flac":  "flac",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
}

// Download saves the track's audio under dir as "<title - artist>.<ext>" and
// returns the file path. Local tracks are already on disk and are returned
// as they are.
func (s *Service) Download(ctx context.Context, track Track, dir string) (string, error) {
	if track.Source == TrackSourceLocal && s.localFiles {
		return track.URL, nil
	}

	streamURL, err := s.ResolveStream(ctx, track)
	if err != nil {
		return "", err
	}
	if !isWebURL(streamURL) {
		return "", fmt.Errorf("%w: stream is not an http source", ErrDownloadFailed)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	name := downloadName(track) + "." + audioExtension(resp.Header.Get("Content-Type"), streamURL)
	target := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"track": track.ID,
		"bytes": written,
	}).Infof("downloaded %s", target)
	return target, nil
}

// downloadName turns the display name into a portable file name.
func downloadName(track Track) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, track.DisplayName())
	name = strings.Trim(strings.TrimSpace(name), ".")

	if runes := []rune(name); len(runes) > 120 {
		name = strings.TrimSpace(string(runes[:120]))
	}
	if name == "" {
		name = "track"
	}
	return name
}

// audioExtension picks the extension from the content type, then from the
// URL path, and falls back to mp3.
func audioExtension(contentType, rawURL string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := audioExtensions[mediaType]; ok {
			return ext
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), "."); ext != "" {
			for _, known := range audioExtensions {
				if ext == known {
					return ext
				}
			}
		}
	}
	if strings.Contains(rawURL, "m4a") {
		return "m4a"
	}
	return "mp3"
}
