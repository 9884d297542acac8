package repository

import (
	"context"
	"database/sql"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/jmoiron/sqlx"
)

type PostgresCalendarRepository struct {
	db *sqlx.DB
}

func NewPostgresCalendarRepository(db *sqlx.DB) *PostgresCalendarRepository {
	return &PostgresCalendarRepository{db: db}
}

func (r *PostgresCalendarRepository) Create(ctx context.Context, cal model.CalendarSource) (model.CalendarSource, error) {
	query := `
		INSERT INTO calendar_sources (owner_id, name, kind, origin, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING *;
	`
	var created model.CalendarSource
	err := r.db.GetContext(ctx, &created, query,
		cal.OwnerID, cal.Name, cal.Kind, cal.Origin, cal.Payload)
	return created, err
}

func (r *PostgresCalendarRepository) GetByID(ctx context.Context, id string) (model.CalendarSource, error) {
	var cal model.CalendarSource
	err := r.db.GetContext(ctx, &cal, `SELECT * FROM calendar_sources WHERE id = $1;`, id)
	return cal, err
}

func (r *PostgresCalendarRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.CalendarSource, error) {
	var cals []model.CalendarSource
	err := r.db.SelectContext(ctx, &cals,
		`SELECT * FROM calendar_sources WHERE owner_id = $1 ORDER BY created_at ASC;`, ownerID)
	return cals, err
}

func (r *PostgresCalendarRepository) ListSyncable(ctx context.Context) ([]model.CalendarSource, error) {
	var cals []model.CalendarSource
	err := r.db.SelectContext(ctx, &cals,
		`SELECT * FROM calendar_sources WHERE kind IN ('URL', 'FILE') ORDER BY created_at ASC;`)
	return cals, err
}

func (r *PostgresCalendarRepository) Delete(ctx context.Context, id, ownerID string) error {
	// Events go with the calendar (ON DELETE CASCADE on events.calendar_id).
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM calendar_sources WHERE id = $1 AND owner_id = $2;`, id, ownerID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
