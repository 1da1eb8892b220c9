package playback

import (
	"context"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
)

// Engine is the audio backend a Controller drives. Engines are polled rather
// than trusted to push events, so Busy is the only completion signal the
// controller relies on. Implementations must be safe for concurrent use.
type Engine interface {
	// Load opens source. A non-nil error means the source cannot be played.
	Load(ctx context.Context, source string) error
	Play() error
	Pause() error
	Resume() error
	Stop() error
	// Seek repositions playback. Position restarts counting from here.
	Seek(position time.Duration) error
	// Busy reports whether audio is being rendered right now. A paused or
	// finished engine is not busy.
	Busy() (bool, error)
	// Position is the offset since the last Play or Seek. It may return
	// ErrPositionUnknown while the engine is settling.
	Position() (time.Duration, error)
	// Duration of the loaded source, or 0 when the engine cannot tell.
	Duration() time.Duration
}

// Resolver turns a track into something Engine.Load accepts.
type Resolver interface {
	ResolveStream(ctx context.Context, track music.Track) (string, error)
}
