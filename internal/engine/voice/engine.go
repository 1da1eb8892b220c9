package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const frameDuration = 20 * time.Millisecond

var (
	ErrVoiceNotConnected = errors.New("voice connection not established")
	ErrNotLoaded         = errors.New("nothing loaded")
)

// Sink receives Opus packets. It is satisfied by a discord voice connection
// through NewConnSink.
type Sink interface {
	SendOpus(ctx context.Context, packet []byte) error
	Speaking(speaking bool)
}

type connSink struct {
	vc *discordgo.VoiceConnection
}

func NewConnSink(vc *discordgo.VoiceConnection) Sink {
	return connSink{vc: vc}
}

func (s connSink) SendOpus(ctx context.Context, packet []byte) error {
	select {
	case s.vc.OpusSend <- packet:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return fmt.Errorf("timeout sending opus frame")
	}
}

func (s connSink) Speaking(speaking bool) {
	if s.vc == nil || !s.vc.Ready {
		return
	}
	_ = s.vc.Speaking(speaking)
}

// transcoder is one ffmpeg process producing Ogg/Opus on stdout.
type transcoder struct {
	cmd    *exec.Cmd
	pages  *oggReader
	cancel context.CancelFunc
}

func (t *transcoder) kill() {
	t.cancel()
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}
	_ = t.cmd.Wait()
}

// Engine plays audio into a voice connection by piping the source through
// ffmpeg. Busy is true while the sender is pushing frames; Position counts
// frames since the last Play or Seek.
type Engine struct {
	ffmpeg string

	mu      sync.Mutex
	sink    Sink
	volume  int
	source  string
	pending *transcoder
	current *transcoder
	gen     uint64
	sending bool
	paused  bool
	frames  int64
	stopFn  context.CancelFunc
}

func NewEngine(ffmpegBinary string) *Engine {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Engine{ffmpeg: ffmpegBinary, volume: 100}
}

func (e *Engine) SetSink(sink Sink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// SetVolume applies from the next Load or Seek.
func (e *Engine) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 200 {
		percent = 200
	}
	e.mu.Lock()
	e.volume = percent
	e.mu.Unlock()
}

func (e *Engine) Load(ctx context.Context, source string) error {
	e.Stop()

	e.mu.Lock()
	volume := e.volume
	e.mu.Unlock()

	t, err := e.startTranscoder(ctx, source, 0, volume)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.source = source
	e.pending = t
	e.mu.Unlock()
	return nil
}

func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending == nil {
		return ErrNotLoaded
	}
	if e.sink == nil {
		return ErrVoiceNotConnected
	}

	t := e.pending
	e.pending = nil
	e.paused = false
	e.startSenderLocked(t)
	return nil
}

func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.sending {
		return ErrNotLoaded
	}
	e.paused = true
	return nil
}

func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.sending {
		return ErrNotLoaded
	}
	e.paused = false
	return nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	pending, current, stop := e.pending, e.current, e.stopFn
	e.pending, e.current, e.stopFn = nil, nil, nil
	e.source = ""
	e.sending = false
	e.paused = false
	e.frames = 0
	e.gen++
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
	if pending != nil {
		pending.kill()
	}
	if current != nil {
		current.kill()
	}
	return nil
}

// Seek restarts ffmpeg at pos on a playing or paused stream. The pause state
// survives the restart; the controller owns the transition out of Paused.
func (e *Engine) Seek(pos time.Duration) error {
	e.mu.Lock()
	source, volume, paused, sink, gen := e.source, e.volume, e.paused, e.sink, e.gen
	sending := e.sending
	e.mu.Unlock()
	if source == "" || !sending {
		return ErrNotLoaded
	}
	if sink == nil {
		return ErrVoiceNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t, err := e.startTranscoder(ctx, source, pos, volume)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.gen != gen || !e.sending {
		// Stopped, reloaded or seeked again while ffmpeg was starting.
		e.mu.Unlock()
		t.kill()
		return ErrNotLoaded
	}
	old, stop := e.current, e.stopFn
	e.paused = paused
	e.startSenderLocked(t)
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
	if old != nil {
		old.kill()
	}
	return nil
}

func (e *Engine) Busy() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sending && !e.paused, nil
}

func (e *Engine) Position() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.frames) * frameDuration, nil
}

// Duration is unknown to a streaming transcoder; callers use track metadata.
func (e *Engine) Duration() time.Duration {
	return 0
}

func (e *Engine) startSenderLocked(t *transcoder) {
	e.gen++
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())

	e.current = t
	e.stopFn = cancel
	e.sending = true
	e.frames = 0

	go e.send(ctx, gen, t, e.sink)
}

func (e *Engine) send(ctx context.Context, gen uint64, t *transcoder, sink Sink) {
	err := e.stream(ctx, gen, t, sink)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warnf("voice stream ended with error: %v", err)
	}

	e.mu.Lock()
	owned := e.gen == gen
	stop := e.stopFn
	if owned {
		e.sending = false
		e.current = nil
		e.stopFn = nil
	}
	e.mu.Unlock()

	if owned {
		stop()
		t.kill()
	}
}

func (e *Engine) stream(ctx context.Context, gen uint64, t *transcoder, sink Sink) error {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	sink.Speaking(true)
	defer sink.Speaking(false)

	framesSent := 0
	for {
		page, err := t.pages.ReadPage()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debugf("audio stream ended after %d frames", framesSent)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if page.isHeader {
			continue
		}

		for _, packet := range page.packets {
			if len(packet) == 0 {
				continue
			}
			if err := e.waitWhilePaused(ctx, sink); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}

			if err := sink.SendOpus(ctx, packet); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Debugf("dropping opus frame %d: %v", framesSent, err)
				continue
			}

			framesSent++
			e.mu.Lock()
			if e.gen == gen {
				e.frames++
			}
			e.mu.Unlock()
		}
	}
}

func (e *Engine) waitWhilePaused(ctx context.Context, sink Sink) error {
	wasPaused := false
	for {
		e.mu.Lock()
		paused := e.paused
		e.mu.Unlock()

		if !paused {
			if wasPaused {
				sink.Speaking(true)
			}
			return nil
		}
		if !wasPaused {
			sink.Speaking(false)
			wasPaused = true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (e *Engine) startTranscoder(ctx context.Context, source string, offset time.Duration, volume int) (*transcoder, error) {
	procCtx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(procCtx, e.ffmpeg, ffmpegArgs(source, offset, volume)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create ffmpeg stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Debugf("ffmpeg: %s", scanner.Text())
		}
	}()

	t := &transcoder{cmd: cmd, pages: newOggReader(stdout), cancel: cancel}

	ready := make(chan error, 1)
	go func() { ready <- t.pages.WaitForHead() }()

	select {
	case err := <-ready:
		if err != nil {
			t.kill()
			return nil, fmt.Errorf("unplayable source: %w", err)
		}
		return t, nil
	case <-ctx.Done():
		t.kill()
		return nil, ctx.Err()
	}
}

func ffmpegArgs(source string, offset time.Duration, volume int) []string {
	var args []string
	if isRemote(source) {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	if offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64))
	}
	return append(args,
		"-i", source,
		"-vn",
		"-af", fmt.Sprintf("volume=%.2f", float64(volume)/100),
		"-c:a", "libopus",
		"-ar", "48000",
		"-ac", "2",
		"-b:a", "96k",
		"-vbr", "on",
		"-frame_duration", "20",
		"-application", "audio",
		"-f", "ogg",
		"-loglevel", "warning",
		"pipe:1",
	)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
