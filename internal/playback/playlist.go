package playback

import "github.com/hxnx/moonplayer/internal/music"

// Playlist is an ordered list of tracks with a cursor. The cursor is either -1
// (nothing selected) or a valid index. Duplicate tracks are allowed.
//
// A Playlist is not safe for concurrent use; the Controller guards its own.
type Playlist struct {
	tracks []music.Track
	cursor int
}

func NewPlaylist() *Playlist {
	return &Playlist{cursor: -1}
}

// Set replaces the contents and the cursor. An out-of-range start leaves no
// current track until the next Advance.
func (p *Playlist) Set(tracks []music.Track, start int) {
	p.tracks = append([]music.Track(nil), tracks...)
	if start < 0 || start >= len(p.tracks) {
		p.cursor = -1
		return
	}
	p.cursor = start
}

// Append adds tracks to the end and returns the index of the first one added.
func (p *Playlist) Append(tracks ...music.Track) int {
	first := len(p.tracks)
	p.tracks = append(p.tracks, tracks...)
	return first
}

func (p *Playlist) Current() (music.Track, bool) {
	if p.cursor < 0 || p.cursor >= len(p.tracks) {
		return music.Track{}, false
	}
	return p.tracks[p.cursor], true
}

// Advance moves the cursor by dir, wrapping at both ends, and returns the new
// current track. It is a no-op on an empty playlist.
func (p *Playlist) Advance(dir int) (music.Track, bool) {
	next, ok := p.target(dir)
	if !ok {
		return music.Track{}, false
	}
	p.cursor = next
	return p.tracks[next], true
}

// Select moves the cursor to index and returns the track there.
func (p *Playlist) Select(index int) (music.Track, error) {
	if index < 0 || index >= len(p.tracks) {
		return music.Track{}, ErrIndexOutOfRange
	}
	p.cursor = index
	return p.tracks[index], nil
}

// Peek returns the track Advance(dir) would select without moving the cursor.
func (p *Playlist) Peek(dir int) (music.Track, bool) {
	next, ok := p.target(dir)
	if !ok {
		return music.Track{}, false
	}
	return p.tracks[next], true
}

func (p *Playlist) target(dir int) (int, bool) {
	n := len(p.tracks)
	if n == 0 {
		return 0, false
	}
	if p.cursor < 0 {
		if dir < 0 {
			return n - 1, true
		}
		return 0, true
	}
	return mod(p.cursor+dir, n), true
}

// RemoveAt deletes the track at index. The cursor keeps pointing at the same
// track when an earlier entry is removed; removing the current entry leaves
// the cursor on the slot that now holds the following track, clamped to the
// end of the list. Playback itself is not touched.
func (p *Playlist) RemoveAt(index int) error {
	if index < 0 || index >= len(p.tracks) {
		return ErrIndexOutOfRange
	}

	p.tracks = append(p.tracks[:index], p.tracks[index+1:]...)

	switch {
	case len(p.tracks) == 0:
		p.cursor = -1
	case index < p.cursor:
		p.cursor--
	case p.cursor >= len(p.tracks):
		p.cursor = len(p.tracks) - 1
	}
	return nil
}

func (p *Playlist) Len() int {
	return len(p.tracks)
}

func (p *Playlist) Cursor() int {
	return p.cursor
}

func (p *Playlist) Tracks() []music.Track {
	return append([]music.Track(nil), p.tracks...)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
