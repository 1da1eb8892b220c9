package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/hxnx/moonplayer/internal/music"
)

var ErrNotConnected = errors.New("database is not connected")

// LibraryRepository stores favorites and history in PostgreSQL. The history
// primary key is (owner, track_key), so replaying a track updates played_at
// instead of adding a row.
type LibraryRepository struct {
	db *sql.DB
}

func NewLibraryRepository() *LibraryRepository {
	return &LibraryRepository{db: GetDB()}
}

func NewLibraryRepositoryWithDB(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

func (r *LibraryRepository) Favorites(ctx context.Context, owner string) ([]music.Track, error) {
	const query = `
		SELECT track
		FROM favorites
		WHERE owner = $1
		ORDER BY added_at DESC
	`
	return r.queryTracks(ctx, query, owner)
}

func (r *LibraryRepository) AddFavorite(ctx context.Context, owner string, track music.Track, at time.Time) error {
	const query = `
		INSERT INTO favorites (owner, track_key, track, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner, track_key)
		DO UPDATE SET
			track = EXCLUDED.track,
			added_at = EXCLUDED.added_at;
	`
	return r.upsert(ctx, query, owner, track, at)
}

func (r *LibraryRepository) RemoveFavorite(ctx context.Context, owner string, key string) error {
	if r == nil || r.db == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE owner = $1 AND track_key = $2`, owner, key)
	return err
}

func (r *LibraryRepository) History(ctx context.Context, owner string, limit int) ([]music.Track, error) {
	const query = `
		SELECT track
		FROM history
		WHERE owner = $1
		ORDER BY played_at DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 1000
	}
	return r.queryTracks(ctx, query, owner, limit)
}

func (r *LibraryRepository) PushHistory(ctx context.Context, owner string, track music.Track, at time.Time, limit int) error {
	if r == nil || r.db == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	payload, err := json.Marshal(track)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
		INSERT INTO history (owner, track_key, track, played_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner, track_key)
		DO UPDATE SET
			track = EXCLUDED.track,
			played_at = EXCLUDED.played_at;
	`
	if _, err := tx.ExecContext(ctx, upsert, owner, track.Key(), payload, at.UTC()); err != nil {
		return err
	}

	if limit > 0 {
		const trim = `
			DELETE FROM history
			WHERE owner = $1
			AND track_key NOT IN (
				SELECT track_key FROM history
				WHERE owner = $1
				ORDER BY played_at DESC
				LIMIT $2
			)
		`
		if _, err := tx.ExecContext(ctx, trim, owner, limit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *LibraryRepository) upsert(ctx context.Context, query, owner string, track music.Track, at time.Time) error {
	if r == nil || r.db == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	payload, err := json.Marshal(track)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, owner, track.Key(), payload, at.UTC())
	return err
}

func (r *LibraryRepository) queryTracks(ctx context.Context, query string, args ...any) ([]music.Track, error) {
	if r == nil || r.db == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []music.Track
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var track music.Track
		if err := json.Unmarshal(raw, &track); err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
