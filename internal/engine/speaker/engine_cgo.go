//go:build (linux && cgo) || windows || darwin

package speaker

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const AudioAvailable = true

// Engine plays through the local sound device. It owns the speaker: Stop
// clears everything the speaker is mixing.
type Engine struct {
	mu sync.Mutex

	client      *http.Client
	ffmpeg      string
	sampleRate  beep.SampleRate
	initialized bool
	volume      int

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	done     *atomic.Bool
	base     int
}

// NewEngine plays MP3 and WAV directly and other formats through ffmpegBinary.
func NewEngine(ffmpegBinary string) *Engine {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Engine{
		client:     &http.Client{Timeout: 2 * time.Minute},
		ffmpeg:     ffmpegBinary,
		sampleRate: beep.SampleRate(44100),
		volume:     100,
	}
}

func (e *Engine) SetVolume(percent int) {
	e.mu.Lock()
	e.volume = percent
	e.mu.Unlock()
}

func (e *Engine) Load(ctx context.Context, source string) error {
	_ = e.Stop()

	data, kind, err := openSource(ctx, e.client, e.ffmpeg, source)
	if err != nil {
		return err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch kind {
	case kindWAV:
		streamer, format, err = wav.Decode(bytes.NewReader(data))
	default:
		streamer, format, err = mp3.Decode(nopCloser{bytes.NewReader(data)})
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.streamer = streamer
	e.format = format
	e.mu.Unlock()
	return nil
}

func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return ErrNotLoaded
	}
	if !e.initialized {
		if err := speaker.Init(e.sampleRate, e.sampleRate.N(time.Second/10)); err != nil {
			return err
		}
		e.initialized = true
	}

	resampled := beep.Resample(4, e.format.SampleRate, e.sampleRate, e.streamer)
	e.ctrl = &beep.Ctrl{Streamer: volumeEffect(resampled, e.volume)}
	e.base = e.streamer.Position()

	done := &atomic.Bool{}
	e.done = done
	speaker.Play(beep.Seq(e.ctrl, beep.Callback(func() {
		done.Store(true)
	})))
	return nil
}

func (e *Engine) Pause() error {
	return e.setPaused(true)
}

func (e *Engine) Resume() error {
	return e.setPaused(false)
}

func (e *Engine) setPaused(paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl == nil {
		return ErrNotLoaded
	}
	speaker.Lock()
	e.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		speaker.Clear()
	}
	if e.streamer != nil {
		_ = e.streamer.Close()
	}
	e.streamer = nil
	e.ctrl = nil
	e.done = nil
	e.base = 0
	return nil
}

func (e *Engine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return ErrNotLoaded
	}

	samples := e.format.SampleRate.N(pos)
	if n := e.streamer.Len(); samples >= n {
		samples = n - 1
	}
	if samples < 0 {
		samples = 0
	}

	speaker.Lock()
	defer speaker.Unlock()
	if err := e.streamer.Seek(samples); err != nil {
		return err
	}
	e.base = samples
	return nil
}

func (e *Engine) Busy() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl == nil || e.done == nil || e.done.Load() {
		return false, nil
	}
	speaker.Lock()
	paused := e.ctrl.Paused
	speaker.Unlock()
	return !paused, nil
}

func (e *Engine) Position() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0, ErrNotLoaded
	}
	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return e.format.SampleRate.D(pos - e.base), nil
}

func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(e.streamer.Len())
}

func volumeEffect(s beep.Streamer, percent int) beep.Streamer {
	if percent == 100 {
		return s
	}
	if percent <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(float64(percent) / 100),
	}
}
