package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrResolveFailed = errors.New("failed to resolve track metadata")

// Resolver turns user input into tracks and tracks into playable stream URLs.
type Resolver interface {
	Resolve(ctx context.Context, input string, sourceHint TrackSource) (Track, error)
	ResolveSearch(ctx context.Context, input string, sourceHint TrackSource, limit int) ([]Track, error)
	ResolveStreamURL(ctx context.Context, input string, sourceHint TrackSource) (string, error)
}

type YTDLPResolver struct {
	Binary  string
	TempDir string
}

func NewYTDLPResolver(binary, tempDir string) *YTDLPResolver {
	if binary == "" {
		binary = "yt-dlp"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &YTDLPResolver{
		Binary:  binary,
		TempDir: tempDir,
	}
}

func (r *YTDLPResolver) Resolve(ctx context.Context, input string, sourceHint TrackSource) (Track, error) {
	target, err := searchTarget(input, sourceHint, 1)
	if err != nil {
		return Track{}, err
	}

	root, err := r.dumpJSON(ctx, target, false)
	if err != nil {
		return Track{}, err
	}

	items, err := pickYTDLPItems(root, 1)
	if err != nil {
		return Track{}, err
	}

	track, ok := items[0].toTrack(sourceHint)
	if !ok {
		return Track{}, fmt.Errorf("%w: missing track url", ErrResolveFailed)
	}
	return track, nil
}

func (r *YTDLPResolver) ResolveSearch(ctx context.Context, input string, sourceHint TrackSource, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 6
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if looksLikeURL(strings.TrimSpace(input)) {
		track, err := r.Resolve(ctx, input, sourceHint)
		if err != nil {
			return nil, err
		}
		return []Track{track}, nil
	}

	target, err := searchTarget(input, sourceHint, limit)
	if err != nil {
		return nil, err
	}

	root, err := r.dumpJSON(ctx, target, true)
	if err != nil {
		return nil, err
	}

	items, err := pickYTDLPItems(root, limit)
	if err != nil {
		return nil, err
	}

	results := make([]Track, 0, len(items))
	for _, item := range items {
		if track, ok := item.toTrack(sourceHint); ok {
			results = append(results, track)
		}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrResolveFailed)
	}

	return results, nil
}

// ResolveStreamURL asks yt-dlp for the direct URL of the best audio format.
// These URLs expire after a few hours.
func (r *YTDLPResolver) ResolveStreamURL(ctx context.Context, input string, sourceHint TrackSource) (string, error) {
	target, err := searchTarget(input, sourceHint, 1)
	if err != nil {
		return "", err
	}

	output, err := r.run(ctx, "-f", "bestaudio", "-g", "--no-playlist", target)
	if err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	streamURL := strings.TrimSpace(lines[0])
	if streamURL == "" {
		return "", fmt.Errorf("%w: empty stream url", ErrResolveFailed)
	}

	return streamURL, nil
}

func (r *YTDLPResolver) dumpJSON(ctx context.Context, target string, flat bool) (ytDLPItem, error) {
	args := []string{"--dump-single-json", "--skip-download", "--no-playlist"}
	if flat {
		args = append(args, "--flat-playlist")
	}
	args = append(args, target)

	output, err := r.run(ctx, args...)
	if err != nil {
		return ytDLPItem{}, err
	}

	var root ytDLPItem
	if err := json.Unmarshal(output, &root); err != nil {
		return ytDLPItem{}, fmt.Errorf("%w: invalid json: %v", ErrResolveFailed, err)
	}
	return root, nil
}

func (r *YTDLPResolver) run(ctx context.Context, args ...string) ([]byte, error) {
	args = append([]string{"--no-warnings", "--paths", r.TempDir}, args...)

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Env = append(os.Environ(), "TMPDIR="+r.TempDir, "TEMP="+r.TempDir, "TMP="+r.TempDir)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: yt-dlp failed: %v: %s", ErrResolveFailed, err, strings.TrimSpace(stderr.String()))
	}

	log.Debugf("yt-dlp %s took %s", args[len(args)-1], time.Since(start).Round(time.Millisecond))
	return output, nil
}

func searchTarget(input string, sourceHint TrackSource, limit int) (string, error) {
	target := strings.TrimSpace(input)
	if target == "" {
		return "", fmt.Errorf("%w: empty input", ErrResolveFailed)
	}
	if looksLikeURL(target) {
		return target, nil
	}

	prefix := "ytsearch"
	if sourceHint == TrackSourceSoundCloud {
		prefix = "scsearch"
	}
	return fmt.Sprintf("%s%d:%s", prefix, limit, target), nil
}

type ytDLPItem struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Artist     string      `json:"artist"`
	Uploader   string      `json:"uploader"`
	Channel    string      `json:"channel"`
	WebpageURL string      `json:"webpage_url"`
	URL        string      `json:"url"`
	Duration   float64     `json:"duration"`
	Thumbnail  string      `json:"thumbnail"`
	Entries    []ytDLPItem `json:"entries"`
}

func (item ytDLPItem) usable() bool {
	return item.WebpageURL != "" || item.URL != "" || item.Title != ""
}

func (item ytDLPItem) toTrack(sourceHint TrackSource) (Track, bool) {
	link := item.WebpageURL
	if link == "" {
		link = item.URL
	}
	if link == "" {
		return Track{}, false
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Unknown Title"
	}

	artist := item.Artist
	if artist == "" {
		artist = item.Uploader
	}
	if artist == "" {
		artist = item.Channel
	}

	source := sourceHint
	if source == TrackSourceUnknown || source == "" || source == TrackSourceSpotify {
		source = detectSourceFromURL(link)
	}

	duration := time.Duration(item.Duration * float64(time.Second))
	if duration < 0 {
		duration = 0
	}

	return Track{
		ID:        item.ID,
		Title:     title,
		Artist:    strings.TrimSpace(artist),
		URL:       link,
		Source:    source,
		Duration:  duration,
		Thumbnail: item.Thumbnail,
	}, true
}

func pickYTDLPItems(root ytDLPItem, limit int) ([]ytDLPItem, error) {
	if limit <= 0 {
		limit = 1
	}

	if len(root.Entries) == 0 {
		if root.usable() {
			return []ytDLPItem{root}, nil
		}
		return nil, fmt.Errorf("%w: no usable entries", ErrResolveFailed)
	}

	items := make([]ytDLPItem, 0, limit)
	for _, entry := range root.Entries {
		if !entry.usable() {
			continue
		}
		items = append(items, entry)
		if len(items) >= limit {
			break
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrResolveFailed)
	}

	return items, nil
}

func looksLikeURL(value string) bool {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return true
	}

	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func detectSourceFromURL(raw string) TrackSource {
	u, err := url.Parse(raw)
	if err != nil {
		return TrackSourceUnknown
	}

	host := strings.ToLower(u.Host)
	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return TrackSourceYouTube
	case strings.Contains(host, "soundcloud.com"):
		return TrackSourceSoundCloud
	case strings.Contains(host, "spotify.com"):
		return TrackSourceSpotify
	default:
		return TrackSourceUnknown
	}
}
