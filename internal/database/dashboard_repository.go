package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const repoTimeout = 2 * time.Second

// DashboardEntry locates the now-playing message of a guild.
type DashboardEntry struct {
	GuildID   string
	ChannelID string
	MessageID string
	UpdatedAt time.Time
}

type DashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository() *DashboardRepository {
	return &DashboardRepository{db: GetDB()}
}

func (r *DashboardRepository) Upsert(guildID, channelID, messageID string) error {
	if r == nil || r.db == nil {
		return nil
	}
	if guildID == "" || channelID == "" || messageID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO dashboard_entries (guild_id, channel_id, message_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (guild_id)
		DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			message_id = EXCLUDED.message_id,
			updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, guildID, channelID, messageID)
	return err
}

func (r *DashboardRepository) Get(guildID string) (DashboardEntry, bool, error) {
	if r == nil || r.db == nil || guildID == "" {
		return DashboardEntry{}, false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	const query = `
		SELECT channel_id, message_id, updated_at
		FROM dashboard_entries
		WHERE guild_id = $1
	`

	entry := DashboardEntry{GuildID: guildID}
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(&entry.ChannelID, &entry.MessageID, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DashboardEntry{}, false, nil
		}
		return DashboardEntry{}, false, err
	}

	return entry, true, nil
}

// List returns every known dashboard, used to resume updates after a restart.
func (r *DashboardRepository) List() ([]DashboardEntry, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT guild_id, channel_id, message_id, updated_at FROM dashboard_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DashboardEntry
	for rows.Next() {
		var e DashboardEntry
		if err := rows.Scan(&e.GuildID, &e.ChannelID, &e.MessageID, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *DashboardRepository) Delete(guildID string) error {
	if r == nil || r.db == nil || guildID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM dashboard_entries WHERE guild_id = $1`, guildID)
	return err
}
