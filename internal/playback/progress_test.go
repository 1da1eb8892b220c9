package playback

import (
	"testing"
	"time"
)

func TestNewProgressClamps(t *testing.T) {
	tests := []struct {
		elapsed, total time.Duration
		want           time.Duration
	}{
		{-time.Second, time.Minute, 0},
		{30 * time.Second, time.Minute, 30 * time.Second},
		{2 * time.Minute, time.Minute, time.Minute},
		{time.Second, 0, 0},
	}

	for _, tt := range tests {
		p := newProgress(tt.elapsed, tt.total)
		if p.Elapsed != tt.want {
			t.Errorf("newProgress(%v, %v).Elapsed = %v, want %v", tt.elapsed, tt.total, p.Elapsed, tt.want)
		}
		if p.Elapsed > p.Total {
			t.Errorf("elapsed %v exceeds total %v", p.Elapsed, p.Total)
		}
	}
}

func TestProgressLabel(t *testing.T) {
	p := newProgress(65*time.Second+900*time.Millisecond, 3*time.Minute+5*time.Second)
	if got := p.Label(); got != "01:05 / 03:05" {
		t.Fatalf("label = %q", got)
	}
}

func TestProgressFraction(t *testing.T) {
	if f := newProgress(30*time.Second, time.Minute).Fraction(); f != 0.5 {
		t.Fatalf("fraction = %v, want 0.5", f)
	}
	if f := (Progress{}).Fraction(); f != 0 {
		t.Fatalf("fraction of empty progress = %v", f)
	}
}

func TestTimingsDefaults(t *testing.T) {
	got := Timings{
		ShortPlayThreshold: -1,
		ShortPlayGrace:     -1,
		FailureGrace:       -1,
		StartFailureGrace:  -1,
	}.withDefaults()
	want := DefaultTimings()

	if got != want {
		t.Fatalf("withDefaults = %+v, want %+v", got, want)
	}

	zeroGrace := Timings{FailureGrace: 0, PollInterval: time.Second}.withDefaults()
	if zeroGrace.FailureGrace != 0 || zeroGrace.PollInterval != time.Second {
		t.Fatalf("explicit values overwritten: %+v", zeroGrace)
	}
}
