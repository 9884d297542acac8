package database

import (
	"context"
	"log/slog"
)

// schema is applied at startup; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,

	`CREATE TABLE IF NOT EXISTS calendar_sources (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('URL', 'FILE', 'MANUAL')),
		origin TEXT,
		payload BYTEA NOT NULL DEFAULT ''::bytea,
		last_synced_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		calendar_id UUID NOT NULL REFERENCES calendar_sources(id) ON DELETE CASCADE,
		uid TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		all_day BOOLEAN NOT NULL DEFAULT FALSE,
		recurrence_rule TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (calendar_id, uid)
	);`,

	`CREATE INDEX IF NOT EXISTS idx_events_calendar_window
		ON events (calendar_id, start_time, end_time);`,

	`CREATE TABLE IF NOT EXISTS availability_rules (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		slot_duration INT NOT NULL CHECK (slot_duration > 0),
		buffer INT NOT NULL DEFAULT 0 CHECK (buffer >= 0),
		timezone TEXT NOT NULL,
		start_date DATE,
		end_date DATE,
		max_bookings_per_day INT CHECK (max_bookings_per_day > 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		share_token TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,

	`CREATE TABLE IF NOT EXISTS rule_days (
		rule_id UUID NOT NULL REFERENCES availability_rules(id) ON DELETE CASCADE,
		day TEXT NOT NULL CHECK (day IN ('SUNDAY','MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY')),
		PRIMARY KEY (rule_id, day)
	);`,

	`CREATE TABLE IF NOT EXISTS rule_hours (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		rule_id UUID NOT NULL REFERENCES availability_rules(id) ON DELETE CASCADE,
		position INT NOT NULL,
		start_time TIME NOT NULL,
		end_time TIME NOT NULL,
		UNIQUE (rule_id, position)
	);`,

	`CREATE TABLE IF NOT EXISTS rule_calendars (
		rule_id UUID NOT NULL REFERENCES availability_rules(id) ON DELETE CASCADE,
		calendar_id UUID NOT NULL REFERENCES calendar_sources(id) ON DELETE CASCADE,
		PRIMARY KEY (rule_id, calendar_id)
	);`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		rule_id UUID NOT NULL REFERENCES availability_rules(id) ON DELETE CASCADE,
		guest_name TEXT NOT NULL,
		guest_email TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		timezone TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('PENDING','CONFIRMED','CANCELLED')),
		cancel_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,

	// One active booking per exact slot. Cancelled rows fall outside the
	// index, so a cancelled slot can be booked again; concurrent inserts for
	// the same slot serialize here and the loser gets a unique violation.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
		ON bookings (rule_id, start_time, end_time)
		WHERE status <> 'CANCELLED';`,

	`CREATE INDEX IF NOT EXISTS idx_bookings_rule_window
		ON bookings (rule_id, start_time);`,
}

// Migrate applies the schema. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	slog.Info("Database schema is up to date")
	return nil
}
