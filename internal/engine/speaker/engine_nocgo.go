//go:build !((linux && cgo) || windows || darwin)

package speaker

import (
	"context"
	"time"
)

// AudioAvailable is false when the native sound libraries cannot be linked.
const AudioAvailable = false

// Engine rejects every load in builds without audio output.
type Engine struct{}

func NewEngine(string) *Engine {
	return &Engine{}
}

func (e *Engine) SetVolume(int) {}

func (e *Engine) Load(ctx context.Context, source string) error {
	return ErrAudioUnavailable
}

func (e *Engine) Play() error                      { return ErrNotLoaded }
func (e *Engine) Pause() error                     { return ErrNotLoaded }
func (e *Engine) Resume() error                    { return ErrNotLoaded }
func (e *Engine) Stop() error                      { return nil }
func (e *Engine) Seek(time.Duration) error         { return ErrNotLoaded }
func (e *Engine) Busy() (bool, error)              { return false, nil }
func (e *Engine) Position() (time.Duration, error) { return 0, ErrNotLoaded }
func (e *Engine) Duration() time.Duration          { return 0 }
