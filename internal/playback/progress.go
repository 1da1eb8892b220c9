package playback

import (
	"fmt"
	"time"
)

// Progress is derived from engine polls. Elapsed never exceeds Total.
type Progress struct {
	Elapsed time.Duration
	Total   time.Duration
}

func newProgress(elapsed, total time.Duration) Progress {
	if total < 0 {
		total = 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}
	return Progress{Elapsed: elapsed, Total: total}
}

// Label renders "MM:SS / MM:SS".
func (p Progress) Label() string {
	return formatClock(p.Elapsed) + " / " + formatClock(p.Total)
}

// Fraction is Elapsed/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Elapsed) / float64(p.Total)
}

func formatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
