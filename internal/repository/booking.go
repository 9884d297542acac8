package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on active bookings.
const uniqueViolation = "23505"

type PostgresBookingRepository struct {
	db *sqlx.DB
}

func NewPostgresBookingRepository(db *sqlx.DB) *PostgresBookingRepository {
	return &PostgresBookingRepository{db: db}
}

func (r *PostgresBookingRepository) Create(ctx context.Context, booking model.Booking) (model.Booking, error) {
	query := `
		INSERT INTO bookings (
			rule_id, guest_name, guest_email, notes,
			start_time, end_time, timezone, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING *;
	`
	var created model.Booking
	err := r.db.GetContext(ctx, &created, query,
		booking.RuleID, booking.GuestName, booking.GuestEmail, booking.Notes,
		booking.StartTime, booking.EndTime, booking.Timezone, booking.Status,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return model.Booking{}, ErrSlotTaken
		}
		return model.Booking{}, err
	}
	return created, nil
}

func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, `SELECT * FROM bookings WHERE id = $1;`, id)
	return booking, err
}

func (r *PostgresBookingRepository) ListActiveOverlapping(ctx context.Context, ruleID string, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	query := `
		SELECT * FROM bookings
		WHERE rule_id = $1 AND status <> $2 AND start_time < $3 AND end_time > $4
		ORDER BY start_time ASC;
	`
	err := r.db.SelectContext(ctx, &bookings, query, ruleID, enum.BookingCancelled, to, from)
	return bookings, err
}

func (r *PostgresBookingRepository) CountActiveBetween(ctx context.Context, ruleID string, from, to time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE rule_id = $1 AND status <> $2 AND start_time >= $3 AND start_time < $4;
	`
	err := r.db.GetContext(ctx, &count, query, ruleID, enum.BookingCancelled, from, to)
	return count, err
}

func (r *PostgresBookingRepository) ListByOwner(ctx context.Context, ownerID string, filter enum.BookingFilter, now time.Time) ([]model.Booking, error) {
	baseQuery := `
		SELECT b.* FROM bookings b
		JOIN availability_rules ar ON b.rule_id = ar.id
		WHERE ar.owner_id = $1
	`

	var args []any
	args = append(args, ownerID)

	filterClause := ""
	switch filter {
	case enum.BookingFilterPast:
		filterClause = " AND b.status <> $2 AND b.start_time < $3"
		args = append(args, enum.BookingCancelled, now)
	case enum.BookingFilterCancelled:
		filterClause = " AND b.status = $2"
		args = append(args, enum.BookingCancelled)
	default: // UPCOMING
		filterClause = " AND b.status <> $2 AND b.start_time > $3"
		args = append(args, enum.BookingCancelled, now)
	}

	var bookings []model.Booking
	finalQuery := baseQuery + filterClause + " ORDER BY b.start_time ASC;"
	err := r.db.SelectContext(ctx, &bookings, finalQuery, args...)
	return bookings, err
}

func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, id string, status enum.BookingStatus, reason string) (model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, cancel_reason = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3
		RETURNING *;
	`
	var updated model.Booking
	err := r.db.GetContext(ctx, &updated, query, status, reason, id)
	return updated, err
}
