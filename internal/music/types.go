package music

import "time"

type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSpotify    TrackSource = "spotify"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceLocal      TrackSource = "local"
	TrackSourceUnknown    TrackSource = "unknown"
)

// Track is produced by a resolver and treated as an immutable value afterwards.
// StreamURL may be empty until the stream has been resolved; MediaID is an
// alternate identifier some platforms need to find the stream.
type Track struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Artist    string        `json:"artist"`
	URL       string        `json:"url"`
	Source    TrackSource   `json:"source"`
	Duration  time.Duration `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	StreamURL string        `json:"stream_url,omitempty"`
	MediaID   string        `json:"media_id,omitempty"`
}

// DisplayName renders "Title - Artist", or just the title when no artist is known.
func (t Track) DisplayName() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Title + " - " + t.Artist
}

type Settings struct {
	AutoPlay bool `json:"auto_play"`
	Volume   int  `json:"volume"`
}

// Key identifies a track across sources for favorites and history.
func (t Track) Key() string {
	id := t.ID
	if id == "" {
		id = t.URL
	}
	return string(t.Source) + ":" + id
}
