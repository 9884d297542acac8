package repository

import (
	"context"
	"database/sql"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresRuleRepository struct {
	db *sqlx.DB
}

func NewPostgresRuleRepository(db *sqlx.DB) *PostgresRuleRepository {
	return &PostgresRuleRepository{db: db}
}

func (r *PostgresRuleRepository) Create(ctx context.Context, rule model.AvailabilityRule) (model.AvailabilityRule, error) {
	var created model.AvailabilityRule

	err := transact(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO availability_rules (
				owner_id, name, slot_duration, buffer, timezone,
				start_date, end_date, max_bookings_per_day, is_active, share_token,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING *;
		`
		if err := tx.GetContext(ctx, &created, query,
			rule.OwnerID, rule.Name, rule.SlotDuration, rule.Buffer, rule.Timezone,
			rule.StartDate, rule.EndDate, rule.MaxBookingsPerDay, rule.IsActive, rule.ShareToken,
		); err != nil {
			return err
		}
		return insertRuleChildren(ctx, tx, created.ID, rule)
	})
	if err != nil {
		return model.AvailabilityRule{}, err
	}

	return r.GetByID(ctx, created.ID)
}

func (r *PostgresRuleRepository) GetByID(ctx context.Context, id string) (model.AvailabilityRule, error) {
	var rule model.AvailabilityRule
	if err := r.db.GetContext(ctx, &rule, `SELECT * FROM availability_rules WHERE id = $1;`, id); err != nil {
		return model.AvailabilityRule{}, err
	}
	if err := r.loadChildren(ctx, &rule); err != nil {
		return model.AvailabilityRule{}, err
	}
	return rule, nil
}

func (r *PostgresRuleRepository) GetByShareToken(ctx context.Context, token string) (model.AvailabilityRule, error) {
	var rule model.AvailabilityRule
	if err := r.db.GetContext(ctx, &rule, `SELECT * FROM availability_rules WHERE share_token = $1;`, token); err != nil {
		return model.AvailabilityRule{}, err
	}
	if err := r.loadChildren(ctx, &rule); err != nil {
		return model.AvailabilityRule{}, err
	}
	return rule, nil
}

func (r *PostgresRuleRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.AvailabilityRule, error) {
	var rules []model.AvailabilityRule
	err := r.db.SelectContext(ctx, &rules,
		`SELECT * FROM availability_rules WHERE owner_id = $1 ORDER BY created_at ASC;`, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		if err := r.loadChildren(ctx, &rules[i]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func (r *PostgresRuleRepository) Update(ctx context.Context, rule model.AvailabilityRule) (model.AvailabilityRule, error) {
	err := transact(ctx, r.db, func(tx *sqlx.Tx) error {
		// share_token is immutable once issued; it is deliberately absent here.
		query := `
			UPDATE availability_rules SET
				name = $1, slot_duration = $2, buffer = $3, timezone = $4,
				start_date = $5, end_date = $6, max_bookings_per_day = $7,
				is_active = $8, updated_at = NOW()
			WHERE id = $9 AND owner_id = $10;
		`
		result, err := tx.ExecContext(ctx, query,
			rule.Name, rule.SlotDuration, rule.Buffer, rule.Timezone,
			rule.StartDate, rule.EndDate, rule.MaxBookingsPerDay,
			rule.IsActive, rule.ID, rule.OwnerID,
		)
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

		// Child rows are replaced wholesale inside the transaction: delete
		// everything, then re-insert the new set.
		for _, table := range []string{"rule_days", "rule_hours", "rule_calendars"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE rule_id = $1;`, rule.ID); err != nil {
				return err
			}
		}
		return insertRuleChildren(ctx, tx, rule.ID, rule)
	})
	if err != nil {
		return model.AvailabilityRule{}, err
	}
	return r.GetByID(ctx, rule.ID)
}

func (r *PostgresRuleRepository) SetActive(ctx context.Context, id, ownerID string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE availability_rules SET is_active = $1, updated_at = NOW() WHERE id = $2 AND owner_id = $3;`,
		active, id, ownerID)
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

func (r *PostgresRuleRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_rules WHERE id = $1 AND owner_id = $2;`, id, ownerID)
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

func (r *PostgresRuleRepository) loadChildren(ctx context.Context, rule *model.AvailabilityRule) error {
	var days []enum.DayOfWeek
	if err := r.db.SelectContext(ctx, &days,
		`SELECT day FROM rule_days WHERE rule_id = $1;`, rule.ID); err != nil {
		return err
	}
	rule.Days = days

	var hours []model.TimeWindow
	if err := r.db.SelectContext(ctx, &hours,
		`SELECT id, rule_id, position,
		        to_char(start_time, 'HH24:MI') AS start_time,
		        to_char(end_time, 'HH24:MI') AS end_time
		 FROM rule_hours WHERE rule_id = $1 ORDER BY position ASC;`, rule.ID); err != nil {
		return err
	}
	rule.Hours = hours

	var calendarIDs []string
	if err := r.db.SelectContext(ctx, &calendarIDs,
		`SELECT calendar_id FROM rule_calendars WHERE rule_id = $1;`, rule.ID); err != nil {
		return err
	}
	rule.CalendarIDs = calendarIDs

	return nil
}

func insertRuleChildren(ctx context.Context, tx *sqlx.Tx, ruleID string, rule model.AvailabilityRule) error {
	for _, day := range rule.Days {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rule_days (rule_id, day) VALUES ($1, $2);`, ruleID, day); err != nil {
			return err
		}
	}
	for i, window := range rule.Hours {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rule_hours (rule_id, position, start_time, end_time) VALUES ($1, $2, $3, $4);`,
			ruleID, i, window.StartTime, window.EndTime); err != nil {
			return err
		}
	}
	if len(rule.CalendarIDs) > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rule_calendars (rule_id, calendar_id)
			 SELECT $1, unnest($2::uuid[]);`,
			ruleID, pq.Array(rule.CalendarIDs)); err != nil {
			return err
		}
	}
	return nil
}

// transact runs fn inside a transaction, mirroring database.DB.Transaction
// for callers that only hold the *sqlx.DB.
func transact(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
