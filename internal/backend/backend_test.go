package backend

import (
	"errors"
	"testing"

	"github.com/hxnx/moonplayer/config"
)

func TestChooseLibrary(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		hasDB     bool
		hasRedis  bool
		want      string
		wantErr   bool
	}{
		{"auto prefers postgres", config.LibraryBackendAuto, true, true, config.LibraryBackendPostgres, false},
		{"auto falls back to redis", config.LibraryBackendAuto, false, true, config.LibraryBackendRedis, false},
		{"auto falls back to memory", config.LibraryBackendAuto, false, false, config.LibraryBackendMemory, false},
		{"explicit memory", config.LibraryBackendMemory, true, true, config.LibraryBackendMemory, false},
		{"explicit redis", config.LibraryBackendRedis, true, true, config.LibraryBackendRedis, false},
		{"missing postgres", config.LibraryBackendPostgres, false, true, "", true},
		{"missing redis", config.LibraryBackendRedis, true, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := chooseLibrary(tt.requested, tt.hasDB, tt.hasRedis)
			if tt.wantErr {
				if !errors.Is(err, ErrBackendUnavailable) {
					t.Fatalf("err = %v, want ErrBackendUnavailable", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	got := Defaults(&config.Config{AutoPlay: true, DefaultVolume: 70})
	if !got.AutoPlay || got.Volume != 70 {
		t.Fatalf("got %+v", got)
	}
}
