package library

import (
	"context"
	"sync"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
	"github.com/hxnx/moonplayer/internal/playback"
	log "github.com/sirupsen/logrus"
)

const recorderTimeout = 5 * time.Second

// Recorder adds a track to the history the first time its session reports
// Playing. Observer callbacks only enqueue; a worker does the store I/O.
type Recorder struct {
	lib   *Library
	owner string
	jobs  chan music.Track

	mu   sync.Mutex
	last playback.Token

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRecorder(lib *Library, owner string) *Recorder {
	return &Recorder{
		lib:   lib,
		owner: owner,
		jobs:  make(chan music.Track, 16),
		done:  make(chan struct{}),
	}
}

// Start runs the worker until ctx ends or Close is called.
func (r *Recorder) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.run(ctx)
}

func (r *Recorder) Close() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Recorder) ProgressChanged(playback.Progress) {}

func (r *Recorder) StateChanged(ev playback.StateEvent) {
	if ev.State != playback.StatePlaying {
		return
	}

	r.mu.Lock()
	if ev.Token == r.last {
		r.mu.Unlock()
		return
	}
	r.last = ev.Token
	r.mu.Unlock()

	select {
	case r.jobs <- ev.Track:
	default:
		log.WithField("track", ev.Track.ID).Warn("history queue full, dropping entry")
	}
}

func (r *Recorder) run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			return
		case track := <-r.jobs:
			r.record(ctx, track)
		}
	}
}

func (r *Recorder) record(ctx context.Context, track music.Track) {
	ctx, cancel := context.WithTimeout(ctx, recorderTimeout)
	defer cancel()

	if err := r.lib.AddHistory(ctx, r.owner, track); err != nil {
		log.WithFields(log.Fields{
			"owner": r.owner,
			"track": track.ID,
		}).Warnf("failed to record history: %v", err)
	}
}
