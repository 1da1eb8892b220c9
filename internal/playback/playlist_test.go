package playback

import (
	"errors"
	"testing"

	"github.com/hxnx/moonplayer/internal/music"
)

func tracks(ids ...string) []music.Track {
	out := make([]music.Track, 0, len(ids))
	for _, id := range ids {
		out = append(out, music.Track{ID: id, Title: id})
	}
	return out
}

func TestPlaylistAdvanceWraps(t *testing.T) {
	p := NewPlaylist()
	p.Set(tracks("A", "B", "C"), 0)

	want := []struct {
		id     string
		cursor int
	}{
		{"B", 1},
		{"C", 2},
		{"A", 0},
	}
	for _, w := range want {
		got, ok := p.Advance(1)
		if !ok {
			t.Fatalf("advance returned no track")
		}
		if got.ID != w.id || p.Cursor() != w.cursor {
			t.Fatalf("got %s at %d, want %s at %d", got.ID, p.Cursor(), w.id, w.cursor)
		}
	}
}

func TestPlaylistAdvanceBackwardWraps(t *testing.T) {
	p := NewPlaylist()
	p.Set(tracks("A", "B", "C"), 0)

	got, _ := p.Advance(-1)
	if got.ID != "C" || p.Cursor() != 2 {
		t.Fatalf("got %s at %d, want C at 2", got.ID, p.Cursor())
	}
}

func TestPlaylistAdvanceIsModular(t *testing.T) {
	for n := 1; n <= 4; n++ {
		ids := []string{"A", "B", "C", "D"}[:n]
		for start := 0; start < n; start++ {
			for _, dir := range []int{-5, -1, 1, 2, 7} {
				p := NewPlaylist()
				p.Set(tracks(ids...), start)
				p.Advance(dir)

				want := ((start+dir)%n + n) % n
				if p.Cursor() != want {
					t.Fatalf("n=%d start=%d dir=%d: cursor %d, want %d", n, start, dir, p.Cursor(), want)
				}
			}
		}
	}
}

func TestPlaylistEmpty(t *testing.T) {
	p := NewPlaylist()

	if _, ok := p.Advance(1); ok {
		t.Fatal("advance on empty playlist returned a track")
	}
	if _, ok := p.Current(); ok {
		t.Fatal("empty playlist has a current track")
	}
	if p.Cursor() != -1 {
		t.Fatalf("cursor = %d, want -1", p.Cursor())
	}
}

func TestPlaylistNoSelection(t *testing.T) {
	p := NewPlaylist()
	p.Set(tracks("A", "B", "C"), 10)

	if p.Cursor() != -1 {
		t.Fatalf("cursor = %d, want -1", p.Cursor())
	}
	if got, _ := p.Peek(-1); got.ID != "C" {
		t.Fatalf("peek(-1) = %s, want C", got.ID)
	}
	if got, _ := p.Advance(1); got.ID != "A" {
		t.Fatalf("advance(1) = %s, want A", got.ID)
	}
}

func TestPlaylistPeekDoesNotMove(t *testing.T) {
	p := NewPlaylist()
	p.Set(tracks("A", "B"), 0)

	if got, _ := p.Peek(1); got.ID != "B" {
		t.Fatalf("peek = %s, want B", got.ID)
	}
	if p.Cursor() != 0 {
		t.Fatalf("cursor moved to %d", p.Cursor())
	}
}

func TestPlaylistRemoveAt(t *testing.T) {
	tests := []struct {
		name       string
		cursor     int
		remove     int
		wantCursor int
		wantID     string
	}{
		{"before cursor", 2, 0, 1, "C"},
		{"after cursor", 0, 2, 0, "A"},
		{"at cursor", 1, 1, 1, "C"},
		{"at last cursor", 2, 2, 1, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlaylist()
			p.Set(tracks("A", "B", "C"), tt.cursor)

			if err := p.RemoveAt(tt.remove); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if p.Cursor() != tt.wantCursor {
				t.Fatalf("cursor = %d, want %d", p.Cursor(), tt.wantCursor)
			}
			cur, _ := p.Current()
			if cur.ID != tt.wantID {
				t.Fatalf("current = %s, want %s", cur.ID, tt.wantID)
			}
		})
	}
}

func TestPlaylistRemoveLast(t *testing.T) {
	p := NewPlaylist()
	p.Set(tracks("A"), 0)

	if err := p.RemoveAt(0); err != nil {
		t.Fatal(err)
	}
	if p.Cursor() != -1 || p.Len() != 0 {
		t.Fatalf("cursor = %d, len = %d", p.Cursor(), p.Len())
	}
	if err := p.RemoveAt(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestPlaylistAppend(t *testing.T) {
	p := NewPlaylist()
	p.Set(tracks("A"), 0)

	if first := p.Append(tracks("B", "C")...); first != 1 {
		t.Fatalf("first = %d, want 1", first)
	}

	got := p.Tracks()
	got[0].ID = "mutated"
	if cur, _ := p.Current(); cur.ID != "A" {
		t.Fatal("Tracks returned the backing slice")
	}
}

func TestPlaylistSelect(t *testing.T) {
	p := NewPlaylist()
	p.Set(tracks("A", "B", "C"), -1)

	tr, err := p.Select(2)
	if err != nil || tr.ID != "C" || p.Cursor() != 2 {
		t.Fatalf("Select(2) = %v, %v at cursor %d", tr.ID, err, p.Cursor())
	}
	if _, err := p.Select(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
	if p.Cursor() != 2 {
		t.Fatalf("failed Select moved the cursor to %d", p.Cursor())
	}
}
