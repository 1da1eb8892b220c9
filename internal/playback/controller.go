package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
	log "github.com/sirupsen/logrus"
)

// origin records which command started the current attempt. It decides
// whether failures may chain into an automatic advance.
type origin int

const (
	originDirect origin = iota
	originForward
	originBackward
	originReplay
)

// Prefetcher is implemented by resolvers that can warm their cache for a
// track before it is needed.
type Prefetcher interface {
	Prefetch(ctx context.Context, track music.Track)
}

// Snapshot is a consistent copy of the controller state for presentation.
type Snapshot struct {
	State    State
	Track    music.Track
	HasTrack bool
	Progress Progress
	AutoPlay bool
	Dragging bool
	Cursor   int
	Length   int
}

// Controller owns what is currently playing. Every load mints a new session
// token; background monitors act only while their token is still current.
type Controller struct {
	engine   Engine
	resolver Resolver
	timings  Timings

	// loadMu serializes the stop/load/play sequence on the engine.
	loadMu sync.Mutex

	mu        sync.Mutex
	tokens    Authority
	playlist  *Playlist
	observers []Observer
	state     State
	track     music.Track
	hasTrack  bool
	origin    origin
	autoPlay  bool
	dragging  bool
	// pausePending holds a pause requested before the engine started.
	pausePending bool
	offset       time.Duration
	progress     Progress
	loadedAt     time.Time
	monitorFor   Token

	now   func() time.Time
	sleep func(time.Duration)
}

func NewController(engine Engine, resolver Resolver, timings Timings) *Controller {
	return &Controller{
		engine:   engine,
		resolver: resolver,
		timings:  timings.withDefaults(),
		playlist: NewPlaylist(),
		state:    StateIdle,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

func (c *Controller) WithObserver(o Observer) *Controller {
	if o == nil {
		return c
	}
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
	return c
}

func (c *Controller) SetPlaylist(tracks []music.Track, start int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playlist.Set(tracks, start)
}

// Append adds tracks to the playlist and returns the index of the first one.
func (c *Controller) Append(tracks ...music.Track) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlist.Append(tracks...)
}

func (c *Controller) RemoveAt(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlist.RemoveAt(index)
}

func (c *Controller) Playlist() []music.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlist.Tracks()
}

func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlist.Cursor()
}

func (c *Controller) SetAutoPlay(enabled bool) {
	c.mu.Lock()
	c.autoPlay = enabled
	c.mu.Unlock()
}

func (c *Controller) AutoPlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoPlay
}

// SetDragging marks a held seek gesture. Progress publication is suppressed
// until Seek releases it.
func (c *Controller) SetDragging(dragging bool) {
	c.mu.Lock()
	c.dragging = dragging
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Current returns the track of the latest attempt, if any.
func (c *Controller) Current() (music.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track, c.hasTrack
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:    c.state,
		Track:    c.track,
		HasTrack: c.hasTrack,
		Progress: c.progress,
		AutoPlay: c.autoPlay,
		Dragging: c.dragging,
		Cursor:   c.playlist.Cursor(),
		Length:   c.playlist.Len(),
	}
}

// LoadAndPlay supersedes whatever is playing and starts track. It blocks only
// for source resolution and the engine load; monitoring runs in the background.
func (c *Controller) LoadAndPlay(ctx context.Context, track music.Track) error {
	c.mu.Lock()
	tok := c.beginLocked(track, originDirect)
	c.mu.Unlock()
	return c.start(ctx, tok, track)
}

// Replay plays the track under the playlist cursor again.
func (c *Controller) Replay(ctx context.Context) error {
	c.mu.Lock()
	track, ok := c.playlist.Current()
	if !ok {
		c.mu.Unlock()
		return ErrNothingLoaded
	}
	tok := c.beginLocked(track, originReplay)
	c.mu.Unlock()
	return c.start(ctx, tok, track)
}

// PlayAt selects the playlist entry at index and plays it.
func (c *Controller) PlayAt(ctx context.Context, index int) error {
	c.mu.Lock()
	track, err := c.playlist.Select(index)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	tok := c.beginLocked(track, originDirect)
	c.mu.Unlock()
	return c.start(ctx, tok, track)
}

// Advance moves the playlist cursor by dir and plays the new current track.
func (c *Controller) Advance(ctx context.Context, dir int) error {
	if dir == 0 {
		return c.Replay(ctx)
	}
	return c.advance(ctx, "", dir, false)
}

func (c *Controller) Next(ctx context.Context) error {
	return c.Advance(ctx, 1)
}

func (c *Controller) Previous(ctx context.Context) error {
	return c.Advance(ctx, -1)
}

// PauseResume pauses a busy engine and resumes an idle one. A session that
// has already ended is replayed from the start. While a track is still
// loading the request is remembered and applied once the engine plays.
func (c *Controller) PauseResume(ctx context.Context) error {
	c.mu.Lock()

	if c.state == StateLoading {
		c.pausePending = !c.pausePending
		c.mu.Unlock()
		return nil
	}

	if c.state == StateIdle || c.state == StateCompleted {
		if !c.hasTrack {
			c.mu.Unlock()
			return ErrNothingLoaded
		}
		track := c.track
		tok := c.beginLocked(track, originReplay)
		c.mu.Unlock()
		return c.start(ctx, tok, track)
	}

	tok := c.tokens.Current()
	busy, err := c.engine.Busy()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}

	if busy {
		if err := c.engine.Pause(); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("%w: %v", ErrEngineFailure, err)
		}
		c.setStateLocked(tok, StatePaused, nil)
		c.mu.Unlock()
		return nil
	}

	if err := c.engine.Resume(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}
	c.setStateLocked(tok, StatePlaying, nil)

	spawn := c.monitorFor != tok
	if spawn {
		c.monitorFor = tok
	}
	c.mu.Unlock()

	if spawn {
		go c.monitor(tok)
	}
	return nil
}

// Seek repositions playback and releases a held drag.
func (c *Controller) Seek(position time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dragging = false
	if c.state == StateLoading {
		return ErrNotStarted
	}
	if !c.state.active() {
		return ErrNothingLoaded
	}

	position = newProgress(position, c.progress.Total).Elapsed
	if err := c.engine.Seek(position); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}

	c.offset = position
	c.progress = newProgress(position, c.progress.Total)
	if c.state == StateStalled {
		c.setStateLocked(c.tokens.Current(), StatePlaying, nil)
	}
	c.publishLocked()
	return nil
}

// Stop supersedes the session. A running monitor notices on its next check
// and exits without further effect.
func (c *Controller) Stop() error {
	c.mu.Lock()
	tok := c.tokens.Current()
	c.tokens.Revoke()
	c.dragging = false
	if c.state != StateIdle {
		c.setStateLocked(tok, StateIdle, nil)
	}
	c.mu.Unlock()

	if err := c.engine.Stop(); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}
	return nil
}

// advance moves the cursor and starts the new track. A non-zero expect makes
// the whole step conditional on that token still being current; auto marks
// steps the controller takes on its own, which also honour the auto-play flag.
func (c *Controller) advance(ctx context.Context, expect Token, dir int, auto bool) error {
	c.mu.Lock()
	if !expect.IsZero() && !c.tokens.Valid(expect) {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if auto && !c.autoPlay {
		c.settleLocked(expect)
		c.mu.Unlock()
		return nil
	}

	track, ok := c.playlist.Advance(dir)
	if !ok {
		c.settleLocked(expect)
		c.mu.Unlock()
		return ErrPlaylistEmpty
	}

	o := originForward
	if dir < 0 {
		o = originBackward
	}
	tok := c.beginLocked(track, o)
	c.mu.Unlock()

	return c.start(ctx, tok, track)
}

// settleLocked returns a completed session to idle when no advance follows.
func (c *Controller) settleLocked(tok Token) {
	if !tok.IsZero() && c.state == StateCompleted {
		c.setStateLocked(tok, StateIdle, nil)
	}
}

// chainAdvance is the controller's own "next" after completion or failure.
func (c *Controller) chainAdvance(tok Token, delay time.Duration) {
	if delay > 0 {
		c.sleep(delay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timings.LoadTimeout)
	defer cancel()

	err := c.advance(ctx, tok, 1, true)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		log.Debugf("auto-advance stopped: %v", err)
	}
}

func (c *Controller) beginLocked(track music.Track, o origin) Token {
	tok := c.tokens.Mint()
	c.track = track
	c.hasTrack = true
	c.origin = o
	c.dragging = false
	c.pausePending = false
	c.offset = 0
	c.progress = newProgress(0, track.Duration)
	c.loadedAt = c.now()
	c.setStateLocked(tok, StateLoading, nil)
	return tok
}

func (c *Controller) start(ctx context.Context, tok Token, track music.Track) error {
	source := track.StreamURL
	if source == "" {
		if c.resolver == nil {
			return c.fail(tok, fmt.Errorf("%w: %q has no stream", ErrResolveFailure, track.ID))
		}
		resolved, err := c.resolver.ResolveStream(ctx, track)
		if err != nil {
			return c.fail(tok, fmt.Errorf("%w: %v", ErrResolveFailure, err))
		}
		if resolved == "" {
			return c.fail(tok, fmt.Errorf("%w: empty stream for %q", ErrResolveFailure, track.ID))
		}
		source = resolved
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if !c.tokens.Valid(tok) {
		return ErrSuperseded
	}

	_ = c.engine.Stop()
	if err := c.engine.Load(ctx, source); err != nil {
		return c.fail(tok, fmt.Errorf("%w: %v", ErrLoadFailure, err))
	}

	c.mu.Lock()
	if !c.tokens.Valid(tok) {
		c.mu.Unlock()
		_ = c.engine.Stop()
		return ErrSuperseded
	}
	if err := c.engine.Play(); err != nil {
		c.mu.Unlock()
		return c.fail(tok, fmt.Errorf("%w: %v", ErrLoadFailure, err))
	}

	total := c.engine.Duration()
	if total <= 0 {
		total = track.Duration
	}
	if total <= 0 {
		total = c.timings.DefaultDuration
	}
	c.offset = 0
	c.progress = newProgress(0, total)
	c.loadedAt = c.now()
	if c.pausePending {
		c.pausePending = false
		if err := c.engine.Pause(); err != nil {
			log.WithField("track", track.ID).Warnf("deferred pause failed: %v", err)
		} else {
			c.setStateLocked(tok, StatePaused, nil)
		}
	}
	spawn := c.monitorFor != tok
	c.monitorFor = tok
	c.publishLocked()
	c.mu.Unlock()

	if spawn {
		go c.monitor(tok)
	}
	if p, ok := c.resolver.(Prefetcher); ok {
		go c.prefetch(tok, p)
	}
	return nil
}

// fail ends the attempt bound to tok. A failed forward step may chain one
// more advance when auto-play is on.
func (c *Controller) fail(tok Token, err error) error {
	c.mu.Lock()
	if !c.tokens.Valid(tok) {
		c.mu.Unlock()
		return err
	}

	log.WithField("track", c.track.ID).Warnf("playback attempt failed: %v", err)
	c.setStateLocked(tok, StateIdle, err)
	chain := c.autoPlay && c.origin == originForward
	c.mu.Unlock()

	if chain {
		go c.chainAdvance(tok, c.timings.FailureGrace)
	}
	return err
}

func (c *Controller) prefetch(tok Token, p Prefetcher) {
	c.mu.Lock()
	next, ok := c.playlist.Peek(1)
	valid := c.tokens.Valid(tok)
	c.mu.Unlock()

	if !ok || !valid || next.StreamURL != "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timings.LoadTimeout)
	defer cancel()
	p.Prefetch(ctx, next)
}

func (c *Controller) setStateLocked(tok Token, s State, err error) {
	c.state = s
	ev := StateEvent{
		Token: tok,
		Track: c.track,
		State: s,
		Err:   err,
	}
	for _, o := range c.observers {
		o.StateChanged(ev)
	}
}

func (c *Controller) publishLocked() {
	for _, o := range c.observers {
		o.ProgressChanged(c.progress)
	}
}
