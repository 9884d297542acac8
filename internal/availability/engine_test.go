package availability

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
)

type fakeEventRepo struct {
	events []model.Event
}

func (r *fakeEventRepo) ListUIDs(ctx context.Context, calendarID string) ([]string, error) {
	return nil, nil
}

func (r *fakeEventRepo) ApplySyncBatch(ctx context.Context, calendarID string, batch repository.SyncBatch) (repository.SyncStats, error) {
	return repository.SyncStats{}, nil
}

func (r *fakeEventRepo) ListOverlapping(ctx context.Context, calendarIDs []string, from, to time.Time) ([]model.Event, error) {
	out := make([]model.Event, 0)
	for _, ev := range r.events {
		if ev.StartTime.Before(to) && ev.EndTime.After(from) {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	bookings []model.Booking
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking model.Booking) (model.Booking, error) {
	r.bookings = append(r.bookings, booking)
	return booking, nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	for _, b := range r.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Booking{}, sql.ErrNoRows
}

func (r *fakeBookingRepo) ListByOwner(ctx context.Context, ownerID string, filter enum.BookingFilter, now time.Time) ([]model.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status enum.BookingStatus, reason string) (model.Booking, error) {
	return model.Booking{}, sql.ErrNoRows
}

func (r *fakeBookingRepo) ListActiveOverlapping(ctx context.Context, ruleID string, from, to time.Time) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for _, b := range r.bookings {
		if b.Status == enum.BookingCancelled {
			continue
		}
		if b.RuleID == ruleID && b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountActiveBetween(ctx context.Context, ruleID string, from, to time.Time) (int, error) {
	n := 0
	for _, b := range r.bookings {
		if b.Status == enum.BookingCancelled {
			continue
		}
		if b.RuleID == ruleID && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			n++
		}
	}
	return n, nil
}

func baseRule() model.AvailabilityRule {
	return model.AvailabilityRule{
		ID:           "rule-1",
		SlotDuration: 30,
		Buffer:       0,
		Timezone:     "UTC",
		IsActive:     true,
		Days:         enum.AllDayOfWeek(),
		Hours: []model.TimeWindow{
			{Position: 0, StartTime: "09:00", EndTime: "10:00"},
		},
		CalendarIDs: []string{"cal-1"},
	}
}

// mondayUTC is a Monday, safely in the future relative to the fixed clock.
var mondayUTC = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func newTestEngine(events *fakeEventRepo, bookings *fakeBookingRepo) *Engine {
	e := New(events, bookings)
	e.now = func() time.Time {
		return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return e
}

func slotTimes(t *testing.T, slots []Slot) []string {
	t.Helper()
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime.UTC().Format("15:04")+"-"+s.EndTime.UTC().Format("15:04"))
	}
	return out
}

func TestAvailableSlotsFillsWindowWhenNothingBusy(t *testing.T) {
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), baseRule(), mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	got := slotTimes(t, slots)
	want := []string{"09:00-09:30", "09:30-10:00"}
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAvailableSlotsAcceptsSecondsInWindowTimes(t *testing.T) {
	// Postgres renders TIME columns with seconds, so rules loaded from the
	// database carry HH:MM:SS windows rather than the HH:mm of API payloads.
	rule := baseRule()
	rule.Hours = []model.TimeWindow{
		{Position: 0, StartTime: "09:00:00", EndTime: "10:00:00"},
	}
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	got := slotTimes(t, slots)
	want := []string{"09:00-09:30", "09:30-10:00"}
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAvailableSlotsExcludesSlotsOverlappingBusyEvent(t *testing.T) {
	events := &fakeEventRepo{events: []model.Event{{
		CalendarID: "cal-1",
		StartTime:  mondayUTC.Add(9*time.Hour + 15*time.Minute),
		EndTime:    mondayUTC.Add(9*time.Hour + 45*time.Minute),
	}}}
	engine := newTestEngine(events, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), baseRule(), mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("slots = %v, want none (09:15-09:45 blocks both candidates)", slotTimes(t, slots))
	}
}

func TestAvailableSlotsTouchingBusyIntervalDoesNotBlock(t *testing.T) {
	// Busy 08:30-09:00 merely touches the 09:00-09:30 candidate.
	events := &fakeEventRepo{events: []model.Event{{
		CalendarID: "cal-1",
		StartTime:  mondayUTC.Add(8*time.Hour + 30*time.Minute),
		EndTime:    mondayUTC.Add(9 * time.Hour),
	}}}
	engine := newTestEngine(events, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), baseRule(), mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("slots = %v, want both candidates (touching is not overlapping)", slotTimes(t, slots))
	}
}

func TestAvailableSlotsBufferWidensCollisionAndStride(t *testing.T) {
	rule := baseRule()
	rule.Buffer = 15
	rule.Hours = []model.TimeWindow{{Position: 0, StartTime: "09:00", EndTime: "11:00"}}
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	// Stride is duration+buffer = 45m: 09:00, 09:45, 10:30.
	got := slotTimes(t, slots)
	want := []string{"09:00-09:30", "09:45-10:15", "10:30-11:00"}
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAvailableSlotsBufferedCandidateCollides(t *testing.T) {
	rule := baseRule()
	rule.Buffer = 15
	// Busy 09:35-09:40 does not touch 09:00-09:30, but the buffered candidate
	// 08:45-09:45 does.
	events := &fakeEventRepo{events: []model.Event{{
		CalendarID: "cal-1",
		StartTime:  mondayUTC.Add(9*time.Hour + 35*time.Minute),
		EndTime:    mondayUTC.Add(9*time.Hour + 40*time.Minute),
	}}}
	engine := newTestEngine(events, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("slots = %v, want none (buffer widens the collision check)", slotTimes(t, slots))
	}
}

func TestAvailableSlotsDisallowedWeekdayIsEmptyNotError(t *testing.T) {
	rule := baseRule()
	rule.Days = []enum.DayOfWeek{enum.Tuesday}
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("slots = %v, want empty for a disallowed weekday", slotTimes(t, slots))
	}
}

func TestAvailableSlotsInactiveRuleIsValidationError(t *testing.T) {
	rule := baseRule()
	rule.IsActive = false
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	_, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err == nil {
		t.Fatal("expected error")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestAvailableSlotsDateOutsideRuleRangeIsValidationError(t *testing.T) {
	rule := baseRule()
	rule.StartDate = sql.NullTime{Time: mondayUTC.AddDate(0, 0, 7), Valid: true}
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	_, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err == nil {
		t.Fatal("expected error for date before the rule's start date")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}

	rule = baseRule()
	rule.EndDate = sql.NullTime{Time: mondayUTC.AddDate(0, 0, -7), Valid: true}
	_, err = engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err == nil {
		t.Fatal("expected error for date after the rule's end date")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestAvailableSlotsDailyCapExhaustedReturnsEmpty(t *testing.T) {
	rule := baseRule()
	rule.MaxBookingsPerDay = sql.NullInt64{Int64: 2, Valid: true}
	rule.Hours = []model.TimeWindow{{Position: 0, StartTime: "13:00", EndTime: "14:00"}}
	bookings := &fakeBookingRepo{bookings: []model.Booking{
		{RuleID: "rule-1", Status: enum.BookingConfirmed, StartTime: mondayUTC.Add(9 * time.Hour), EndTime: mondayUTC.Add(9*time.Hour + 30*time.Minute)},
		{RuleID: "rule-1", Status: enum.BookingPending, StartTime: mondayUTC.Add(10 * time.Hour), EndTime: mondayUTC.Add(10*time.Hour + 30*time.Minute)},
	}}
	engine := newTestEngine(&fakeEventRepo{}, bookings)

	slots, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("slots = %v, want empty when the daily cap is reached", slotTimes(t, slots))
	}
}

func TestAvailableSlotsDailyCapTruncates(t *testing.T) {
	rule := baseRule()
	rule.MaxBookingsPerDay = sql.NullInt64{Int64: 2, Valid: true}
	bookings := &fakeBookingRepo{bookings: []model.Booking{
		{RuleID: "rule-1", Status: enum.BookingConfirmed, StartTime: mondayUTC.Add(13 * time.Hour), EndTime: mondayUTC.Add(13*time.Hour + 30*time.Minute)},
	}}
	engine := newTestEngine(&fakeEventRepo{}, bookings)

	slots, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("slots = %v, want exactly 1 (cap 2 minus 1 existing)", slotTimes(t, slots))
	}
	if got := slotTimes(t, slots)[0]; got != "09:00-09:30" {
		t.Errorf("remaining slot = %s, want the earliest candidate", got)
	}
}

func TestAvailableSlotsCancelledBookingDoesNotBlock(t *testing.T) {
	bookings := &fakeBookingRepo{bookings: []model.Booking{
		{RuleID: "rule-1", Status: enum.BookingCancelled, StartTime: mondayUTC.Add(9 * time.Hour), EndTime: mondayUTC.Add(9*time.Hour + 30*time.Minute)},
	}}
	engine := newTestEngine(&fakeEventRepo{}, bookings)

	slots, err := engine.AvailableSlots(context.Background(), baseRule(), mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("slots = %v, want both (cancelled bookings free their slot)", slotTimes(t, slots))
	}
}

func TestAvailableSlotsSkipsSlotsAlreadyInThePast(t *testing.T) {
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})
	// Clock sits mid-window: the first candidate has fully elapsed.
	engine.now = func() time.Time {
		return mondayUTC.Add(9*time.Hour + 40*time.Minute)
	}

	slots, err := engine.AvailableSlots(context.Background(), baseRule(), mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	got := slotTimes(t, slots)
	if len(got) != 1 || got[0] != "09:30-10:00" {
		t.Errorf("slots = %v, want only the slot still ending in the future", got)
	}
}

func TestAvailableSlotsMultipleWindowsKeepConfiguredOrder(t *testing.T) {
	rule := baseRule()
	rule.Hours = []model.TimeWindow{
		{Position: 0, StartTime: "14:00", EndTime: "15:00"},
		{Position: 1, StartTime: "09:00", EndTime: "09:30"},
	}
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	slots, err := engine.AvailableSlots(context.Background(), rule, mondayUTC)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	got := slotTimes(t, slots)
	want := []string{"14:00-14:30", "14:30-15:00", "09:00-09:30"}
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot[%d] = %s, want %s (windows keep configured order)", i, got[i], want[i])
		}
	}
}

func TestAvailableSlotsHonorsRuleTimezone(t *testing.T) {
	rule := baseRule()
	rule.Timezone = "America/New_York"
	engine := newTestEngine(&fakeEventRepo{}, &fakeBookingRepo{})

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, loc)

	slots, err := engine.AvailableSlots(context.Background(), rule, date)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	// 09:00 Eastern on 2025-06-02 is 13:00 UTC (EDT).
	if got := slots[0].StartTime.UTC().Format("15:04"); got != "13:00" {
		t.Errorf("first slot starts %s UTC, want 13:00", got)
	}
}
