// Package repository defines the storage collaborators the core engines
// depend on, plus their Postgres implementations. The sync, scheduler,
// availability and booking packages consume these interfaces only; the SQL
// lives here.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
)

// ErrSlotTaken is returned by BookingRepository.Create when another active
// booking already holds the identical (rule, start, end) slot. The datastore
// unique index makes the check-then-insert race in booking admission safe;
// this sentinel is how the loser finds out.
var ErrSlotTaken = errors.New("slot already booked")

// SyncBatch is one calendar sync's worth of mutations, applied atomically.
type SyncBatch struct {
	Upserts    []model.Event
	DeleteUIDs []string
	SyncedAt   time.Time
}

// SyncStats reports what a sync batch changed.
type SyncStats struct {
	Imported int `json:"imported"`
	Deleted  int `json:"deleted"`
}

type CalendarRepository interface {
	Create(ctx context.Context, cal model.CalendarSource) (model.CalendarSource, error)
	GetByID(ctx context.Context, id string) (model.CalendarSource, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.CalendarSource, error)
	// ListSyncable returns every calendar the scheduler should own a
	// periodic task for (URL and FILE kinds).
	ListSyncable(ctx context.Context) ([]model.CalendarSource, error)
	// Delete removes the calendar and cascades deletion of its events.
	Delete(ctx context.Context, id, ownerID string) error
}

type EventRepository interface {
	// ListUIDs returns the provider UIDs currently stored for a calendar.
	ListUIDs(ctx context.Context, calendarID string) ([]string, error)
	// ApplySyncBatch upserts and deletes events and stamps the calendar's
	// last_synced_at in a single transaction. Nothing is committed if any
	// statement fails.
	ApplySyncBatch(ctx context.Context, calendarID string, batch SyncBatch) (SyncStats, error)
	// ListOverlapping returns events on the given calendars that overlap
	// [from, to) under half-open semantics.
	ListOverlapping(ctx context.Context, calendarIDs []string, from, to time.Time) ([]model.Event, error)
}

type RuleRepository interface {
	Create(ctx context.Context, rule model.AvailabilityRule) (model.AvailabilityRule, error)
	GetByID(ctx context.Context, id string) (model.AvailabilityRule, error)
	GetByShareToken(ctx context.Context, token string) (model.AvailabilityRule, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.AvailabilityRule, error)
	// Update replaces the rule row and all child rows (days, hours,
	// calendars). The share token is never touched.
	Update(ctx context.Context, rule model.AvailabilityRule) (model.AvailabilityRule, error)
	SetActive(ctx context.Context, id, ownerID string, active bool) error
	Delete(ctx context.Context, id, ownerID string) error
}

type BookingRepository interface {
	// Create inserts the booking, returning ErrSlotTaken when the active-slot
	// unique index rejects it.
	Create(ctx context.Context, booking model.Booking) (model.Booking, error)
	GetByID(ctx context.Context, id string) (model.Booking, error)
	// ListActiveOverlapping returns non-cancelled bookings for a rule that
	// overlap [from, to).
	ListActiveOverlapping(ctx context.Context, ruleID string, from, to time.Time) ([]model.Booking, error)
	// CountActiveBetween counts non-cancelled bookings for a rule starting
	// within [from, to), the input for the per-day cap.
	CountActiveBetween(ctx context.Context, ruleID string, from, to time.Time) (int, error)
	ListByOwner(ctx context.Context, ownerID string, filter enum.BookingFilter, now time.Time) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status enum.BookingStatus, reason string) (model.Booking, error)
}
