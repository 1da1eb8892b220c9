package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
)

func TestConnectionString(t *testing.T) {
	cfg := &Config{Host: "db", Port: 5432, User: "moon", DBName: "player", SSLMode: "disable"}
	want := "host=db port=5432 user=moon dbname=player sslmode=disable"
	if got := cfg.ConnectionString(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	cfg.Password = "secret"
	if got := cfg.ConnectionString(); got != want+" password=secret" {
		t.Fatalf("got %q", got)
	}
}

func TestRepositoriesWithoutDatabase(t *testing.T) {
	repo := &LibraryRepository{}
	if _, err := repo.Favorites(context.Background(), "guild"); err != ErrNotConnected {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}

	dash := &DashboardRepository{}
	if _, ok, err := dash.Get("guild"); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

// Runs against a real server when MOONPLAYER_TEST_POSTGRES holds a DSN.
func TestLibraryRepositoryHistory(t *testing.T) {
	dsn := os.Getenv("MOONPLAYER_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("MOONPLAYER_TEST_POSTGRES not set")
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	db = conn
	if err := runMigrations(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	owner := "test-" + time.Now().Format("150405.000000")
	repo := NewLibraryRepositoryWithDB(conn)
	t.Cleanup(func() {
		_, _ = conn.Exec(`DELETE FROM history WHERE owner = $1`, owner)
	})

	base := time.Now()
	for i, id := range []string{"C", "B", "A", "B"} {
		tr := music.Track{ID: id, Source: music.TrackSourceYouTube}
		if err := repo.PushHistory(ctx, owner, tr, base.Add(time.Duration(i)*time.Second), 2); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.History(ctx, owner, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "B" || got[1].ID != "A" {
		t.Fatalf("history = %+v", got)
	}
}
