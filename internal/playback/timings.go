package playback

import "time"

// Timings holds the heuristic constants of the monitor. They were tuned by
// hand and are configuration, not contracts.
type Timings struct {
	// PollInterval separates steady-state polls.
	PollInterval time.Duration
	// StartPollInterval and StartAttempts bound start confirmation.
	StartPollInterval time.Duration
	StartAttempts     int
	// EndDebounce is the re-check delay before a not-busy engine counts as finished.
	EndDebounce time.Duration
	// Tracks that end before ShortPlayThreshold wait ShortPlayGrace before auto-advance.
	ShortPlayThreshold time.Duration
	ShortPlayGrace     time.Duration
	// FailureGrace precedes the auto-advance after a resolve or load failure.
	FailureGrace time.Duration
	// StartFailureGrace precedes the auto-advance after a start timeout.
	StartFailureGrace time.Duration
	// DefaultDuration is used when neither the engine nor the track knows the length.
	DefaultDuration time.Duration
	// LoadTimeout bounds loads the controller starts on its own (auto-advance, prefetch).
	LoadTimeout time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		PollInterval:       500 * time.Millisecond,
		StartPollInterval:  100 * time.Millisecond,
		StartAttempts:      20,
		EndDebounce:        500 * time.Millisecond,
		ShortPlayThreshold: 5 * time.Second,
		ShortPlayGrace:     3 * time.Second,
		FailureGrace:       2 * time.Second,
		StartFailureGrace:  3 * time.Second,
		DefaultDuration:    180 * time.Second,
		LoadTimeout:        60 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultTimings.
func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.PollInterval <= 0 {
		t.PollInterval = d.PollInterval
	}
	if t.StartPollInterval <= 0 {
		t.StartPollInterval = d.StartPollInterval
	}
	if t.StartAttempts <= 0 {
		t.StartAttempts = d.StartAttempts
	}
	if t.EndDebounce <= 0 {
		t.EndDebounce = d.EndDebounce
	}
	if t.ShortPlayThreshold < 0 {
		t.ShortPlayThreshold = d.ShortPlayThreshold
	}
	if t.ShortPlayGrace < 0 {
		t.ShortPlayGrace = d.ShortPlayGrace
	}
	if t.FailureGrace < 0 {
		t.FailureGrace = d.FailureGrace
	}
	if t.StartFailureGrace < 0 {
		t.StartFailureGrace = d.StartFailureGrace
	}
	if t.DefaultDuration <= 0 {
		t.DefaultDuration = d.DefaultDuration
	}
	if t.LoadTimeout <= 0 {
		t.LoadTimeout = d.LoadTimeout
	}
	return t
}
