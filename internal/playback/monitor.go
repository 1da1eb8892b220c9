package playback

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// step is what a monitor iteration decided.
type step int

const (
	stepContinue step = iota
	stepExit
	stepEnded
)

// monitor polls the engine for the session bound to tok. Every effect is
// applied under c.mu after re-checking the token, so a superseded monitor
// winds down without touching the newer session.
func (c *Controller) monitor(tok Token) {
	defer c.monitorExited(tok)

	if !c.confirmStart(tok) {
		return
	}

	for {
		c.sleep(c.timings.PollInterval)

		switch c.sample(tok) {
		case stepExit:
			return
		case stepEnded:
			if c.checkFinished(tok) {
				return
			}
		}
	}
}

// confirmStart waits for the engine to report busy. It reports false when the
// monitor should exit, either because tok was superseded or the start timed out.
func (c *Controller) confirmStart(tok Token) bool {
	for i := 0; i < c.timings.StartAttempts; i++ {
		c.sleep(c.timings.StartPollInterval)

		c.mu.Lock()
		if !c.tokens.Valid(tok) {
			c.mu.Unlock()
			return false
		}
		if c.state == StatePaused {
			c.mu.Unlock()
			return true
		}

		busy, err := c.engine.Busy()
		if err != nil {
			c.engineFailedLocked(tok, err)
			c.mu.Unlock()
			return false
		}
		if busy {
			if c.state == StateLoading {
				c.setStateLocked(tok, StatePlaying, nil)
			}
			c.mu.Unlock()
			return true
		}
		c.mu.Unlock()
	}

	c.startTimedOut(tok)
	return false
}

func (c *Controller) startTimedOut(tok Token) {
	c.mu.Lock()
	if !c.tokens.Valid(tok) {
		c.mu.Unlock()
		return
	}

	log.WithField("track", c.track.ID).Warn("engine never reported playback start")
	_ = c.engine.Stop()
	c.setStateLocked(tok, StateIdle, ErrStartTimeout)
	chain := c.autoPlay && c.origin != originReplay
	c.mu.Unlock()

	if chain {
		c.chainAdvance(tok, c.timings.StartFailureGrace)
	}
}

// sample runs one steady-state iteration.
func (c *Controller) sample(tok Token) step {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.tokens.Valid(tok) {
		return stepExit
	}
	if c.state == StatePaused {
		return stepContinue
	}
	if !c.state.active() {
		return stepExit
	}

	busy, err := c.engine.Busy()
	if err != nil {
		c.engineFailedLocked(tok, err)
		return stepExit
	}

	if c.dragging {
		// The engine may drain its buffer while the user holds the seek bar.
		if !busy && c.state == StatePlaying {
			c.setStateLocked(tok, StateStalled, nil)
		}
		return stepContinue
	}

	if !busy {
		return stepEnded
	}

	if c.state == StateStalled {
		c.setStateLocked(tok, StatePlaying, nil)
	}
	if pos, err := c.engine.Position(); err == nil {
		c.progress = newProgress(c.offset+pos, c.progress.Total)
		c.publishLocked()
	}
	return stepContinue
}

// checkFinished debounces a not-busy reading. It reports true when the
// monitor is done with tok.
func (c *Controller) checkFinished(tok Token) bool {
	c.sleep(c.timings.EndDebounce)

	c.mu.Lock()
	if !c.tokens.Valid(tok) {
		c.mu.Unlock()
		return true
	}
	if c.state == StatePaused || c.dragging {
		c.mu.Unlock()
		return false
	}

	busy, err := c.engine.Busy()
	if err != nil {
		c.engineFailedLocked(tok, err)
		c.mu.Unlock()
		return true
	}
	if busy {
		c.mu.Unlock()
		return false
	}

	delay := c.completeLocked(tok)
	c.mu.Unlock()

	c.chainAdvance(tok, delay)
	return true
}

// completeLocked marks tok's session finished and returns how long to wait
// before the automatic advance.
func (c *Controller) completeLocked(tok Token) time.Duration {
	played := c.now().Sub(c.loadedAt)

	c.progress = newProgress(c.progress.Total, c.progress.Total)
	c.publishLocked()
	c.setStateLocked(tok, StateCompleted, nil)

	if !c.autoPlay {
		return 0
	}
	if played < c.timings.ShortPlayThreshold {
		log.WithFields(log.Fields{
			"track":  c.track.ID,
			"played": played.Round(time.Millisecond),
		}).Debug("track ended early, delaying advance")
		return c.timings.ShortPlayGrace
	}
	return 0
}

func (c *Controller) engineFailedLocked(tok Token, err error) {
	log.WithField("track", c.track.ID).Errorf("engine poll failed: %v", err)
	c.setStateLocked(tok, StateIdle, fmt.Errorf("%w: %v", ErrEngineFailure, err))
}

func (c *Controller) monitorExited(tok Token) {
	c.mu.Lock()
	if c.monitorFor == tok {
		c.monitorFor = ""
	}
	c.mu.Unlock()
}
