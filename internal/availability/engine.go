// Package availability computes the bookable slots a rule offers on a given
// date: the configured windows carved into duration-sized slots, minus
// anything that collides with synced events or active bookings.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	"github.com/fazamuttaqien/slotbook/internal/timerange"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
)

// Slot is one offered interval, expressed in UTC instants. The rule's
// timezone only governs how wall-clock windows are anchored.
type Slot struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type Engine struct {
	events   repository.EventRepository
	bookings repository.BookingRepository
	now      func() time.Time
}

func New(events repository.EventRepository, bookings repository.BookingRepository) *Engine {
	return &Engine{
		events:   events,
		bookings: bookings,
		now:      time.Now,
	}
}

// AvailableSlots returns the rule's free slots for one calendar date, in
// window order then chronological within each window. An empty result means
// the rule simply has nothing to offer that day; a ValidationError means the
// request itself was out of bounds (inactive rule, date outside the rule's
// validity range, bad timezone).
func (e *Engine) AvailableSlots(ctx context.Context, rule model.AvailabilityRule, date time.Time) ([]Slot, error) {
	if !rule.IsActive {
		return nil, appError.NewValidationError("Availability rule is not active", nil)
	}

	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		return nil, appError.NewValidationError("Rule has an invalid timezone: "+rule.Timezone, err)
	}

	day := date.In(loc).Format("2006-01-02")
	if rule.StartDate.Valid && day < rule.StartDate.Time.Format("2006-01-02") {
		return nil, appError.NewValidationError("Date is before the rule's start date", nil)
	}
	if rule.EndDate.Valid && day > rule.EndDate.Time.Format("2006-01-02") {
		return nil, appError.NewValidationError("Date is after the rule's end date", nil)
	}

	// A disallowed weekday is an ordinary empty day, not a bad request.
	if !rule.AllowsDay(enum.DayOfWeekFromWeekday(date.In(loc).Weekday())) {
		return nil, nil
	}

	dayStart, dayEnd := timerange.DayBounds(date, loc)

	busy, err := e.busyIntervals(ctx, rule, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(rule.SlotDuration) * time.Minute
	buffer := time.Duration(rule.Buffer) * time.Minute
	now := e.now()

	slots := make([]Slot, 0)
	for _, window := range rule.Hours {
		windowStart, windowEnd, err := windowBounds(window, date, loc)
		if err != nil {
			return nil, appError.NewValidationError("Rule has a malformed time window", err)
		}

		iter := timerange.NewSlotIter(windowStart, windowEnd, duration, duration+buffer)
		for {
			slot, ok := iter.Next()
			if !ok {
				break
			}
			if !slot.End.After(now) {
				continue
			}
			if slot.ExpandBy(buffer).OverlapsAny(busy) {
				continue
			}
			slots = append(slots, Slot{StartTime: slot.Start, EndTime: slot.End})
		}
	}

	if rule.MaxBookingsPerDay.Valid {
		slots, err = e.applyDailyCap(ctx, rule, dayStart, dayEnd, slots)
		if err != nil {
			return nil, err
		}
	}

	return slots, nil
}

// busyIntervals merges the rule's synced calendar events and active bookings
// into one blocking set for the day.
func (e *Engine) busyIntervals(ctx context.Context, rule model.AvailabilityRule, from, to time.Time) ([]timerange.Interval, error) {
	busy := make([]timerange.Interval, 0)

	if len(rule.CalendarIDs) > 0 {
		events, err := e.events.ListOverlapping(ctx, rule.CalendarIDs, from, to)
		if err != nil {
			return nil, appError.NewStorageError("Failed to load calendar events", err)
		}
		for _, ev := range events {
			busy = append(busy, timerange.Interval{Start: ev.StartTime, End: ev.EndTime})
		}
	}

	bookings, err := e.bookings.ListActiveOverlapping(ctx, rule.ID, from, to)
	if err != nil {
		return nil, appError.NewStorageError("Failed to load bookings", err)
	}
	for _, b := range bookings {
		busy = append(busy, timerange.Interval{Start: b.StartTime, End: b.EndTime})
	}

	return busy, nil
}

// applyDailyCap trims the slot list so the day's active bookings plus new
// offers never exceed the rule's cap.
func (e *Engine) applyDailyCap(ctx context.Context, rule model.AvailabilityRule, dayStart, dayEnd time.Time, slots []Slot) ([]Slot, error) {
	count, err := e.bookings.CountActiveBetween(ctx, rule.ID, dayStart, dayEnd)
	if err != nil {
		return nil, appError.NewStorageError("Failed to count bookings", err)
	}

	remaining := int(rule.MaxBookingsPerDay.Int64) - count
	if remaining <= 0 {
		return []Slot{}, nil
	}
	if len(slots) > remaining {
		slots = slots[:remaining]
	}
	return slots, nil
}

func windowBounds(window model.TimeWindow, date time.Time, loc *time.Location) (time.Time, time.Time, error) {
	startH, startM, err := parseWallClock(window.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endH, endM, err := parseWallClock(window.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := timerange.AtWallClock(date, startH, startM, loc)
	end := timerange.AtWallClock(date, endH, endM, loc)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("window %s-%s is empty", window.StartTime, window.EndTime)
	}
	return start, end, nil
}

// parseWallClock accepts both the HH:mm form used in API payloads and the
// HH:MM:SS form Postgres renders for TIME columns.
func parseWallClock(value string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		parsed, err = time.Parse("15:04:05", value)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("bad wall-clock value %q: %w", value, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}
