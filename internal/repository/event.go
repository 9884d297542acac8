package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresEventRepository struct {
	db *sqlx.DB
}

func NewPostgresEventRepository(db *sqlx.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) ListUIDs(ctx context.Context, calendarID string) ([]string, error) {
	var uids []string
	err := r.db.SelectContext(ctx, &uids,
		`SELECT uid FROM events WHERE calendar_id = $1;`, calendarID)
	return uids, err
}

// ApplySyncBatch commits one sync's inserts, updates and deletes as a unit.
// A failure anywhere rolls the whole batch back, leaving the previous event
// set and last_synced_at untouched.
func (r *PostgresEventRepository) ApplySyncBatch(ctx context.Context, calendarID string, batch SyncBatch) (SyncStats, error) {
	var stats SyncStats

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin sync batch: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	upsertQuery := `
		INSERT INTO events (
			calendar_id, uid, title, description, location,
			start_time, end_time, timezone, all_day, recurrence_rule,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (calendar_id, uid) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			timezone = EXCLUDED.timezone,
			all_day = EXCLUDED.all_day,
			recurrence_rule = EXCLUDED.recurrence_rule,
			updated_at = NOW();
	`
	for _, ev := range batch.Upserts {
		if _, err := tx.ExecContext(ctx, upsertQuery,
			calendarID, ev.UID, ev.Title, ev.Description, ev.Location,
			ev.StartTime, ev.EndTime, ev.Timezone, ev.AllDay, ev.RecurrenceRule,
		); err != nil {
			_ = tx.Rollback()
			return stats, fmt.Errorf("upsert event %s: %w", ev.UID, err)
		}
		stats.Imported++
	}

	if len(batch.DeleteUIDs) > 0 {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM events WHERE calendar_id = $1 AND uid = ANY($2);`,
			calendarID, pq.Array(batch.DeleteUIDs))
		if err != nil {
			_ = tx.Rollback()
			return stats, fmt.Errorf("delete stale events: %w", err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return stats, err
		}
		stats.Deleted = int(deleted)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE calendar_sources SET last_synced_at = $1, updated_at = NOW() WHERE id = $2;`,
		batch.SyncedAt, calendarID,
	); err != nil {
		_ = tx.Rollback()
		return stats, fmt.Errorf("stamp last_synced_at: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SyncStats{}, fmt.Errorf("commit sync batch: %w", err)
	}
	return stats, nil
}

func (r *PostgresEventRepository) ListOverlapping(ctx context.Context, calendarIDs []string, from, to time.Time) ([]model.Event, error) {
	if len(calendarIDs) == 0 {
		return nil, nil
	}

	var events []model.Event
	query := `
		SELECT * FROM events
		WHERE calendar_id = ANY($1) AND start_time < $2 AND end_time > $3
		ORDER BY start_time ASC;
	`
	err := r.db.SelectContext(ctx, &events, query, pq.Array(calendarIDs), to, from)
	return events, err
}
