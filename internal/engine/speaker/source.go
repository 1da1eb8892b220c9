package speaker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

const maxSourceBytes = 256 << 20

var (
	ErrAudioUnavailable = errors.New("audio output is not available in this build")
	ErrNotLoaded        = errors.New("nothing loaded")
	ErrUnsupported      = errors.New("unsupported audio format")
)

type sourceKind int

const (
	kindMP3 sourceKind = iota
	kindWAV
)

// readSource loads a local file or an http(s) URL fully into memory so the
// decoder can seek in it.
func readSource(ctx context.Context, client *http.Client, source string) ([]byte, sourceKind, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, 0, err
		}
		kind, err := kindFromName(source)
		return data, kind, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("fetching %s: status %d", source, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxSourceBytes)); err != nil {
		return nil, 0, err
	}

	kind, err := kindFromContentType(resp.Header.Get("Content-Type"))
	if err != nil {
		u, perr := url.Parse(source)
		if perr != nil {
			return nil, 0, err
		}
		kind, err = kindFromName(u.Path)
	}
	return buf.Bytes(), kind, err
}

func kindFromName(name string) (sourceKind, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return kindMP3, nil
	case ".wav", ".wave":
		return kindWAV, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, path.Ext(name))
	}
}

func kindFromContentType(contentType string) (sourceKind, error) {
	switch {
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return kindMP3, nil
	case strings.Contains(contentType, "wav"):
		return kindWAV, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupported, contentType)
	}
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
