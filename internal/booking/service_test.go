package booking

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/availability"
	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/internal/notify"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
)

type fakeRuleRepo struct {
	rules map[string]model.AvailabilityRule
}

func newFakeRuleRepo(rules ...model.AvailabilityRule) *fakeRuleRepo {
	repo := &fakeRuleRepo{rules: make(map[string]model.AvailabilityRule)}
	for _, r := range rules {
		repo.rules[r.ID] = r
	}
	return repo
}

func (r *fakeRuleRepo) Create(ctx context.Context, rule model.AvailabilityRule) (model.AvailabilityRule, error) {
	r.rules[rule.ID] = rule
	return rule, nil
}

func (r *fakeRuleRepo) GetByID(ctx context.Context, id string) (model.AvailabilityRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return model.AvailabilityRule{}, sql.ErrNoRows
	}
	return rule, nil
}

func (r *fakeRuleRepo) GetByShareToken(ctx context.Context, token string) (model.AvailabilityRule, error) {
	for _, rule := range r.rules {
		if rule.ShareToken == token {
			return rule, nil
		}
	}
	return model.AvailabilityRule{}, sql.ErrNoRows
}

func (r *fakeRuleRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.AvailabilityRule, error) {
	return nil, nil
}

func (r *fakeRuleRepo) Update(ctx context.Context, rule model.AvailabilityRule) (model.AvailabilityRule, error) {
	r.rules[rule.ID] = rule
	return rule, nil
}

func (r *fakeRuleRepo) SetActive(ctx context.Context, id, ownerID string, active bool) error {
	return nil
}

func (r *fakeRuleRepo) Delete(ctx context.Context, id, ownerID string) error {
	delete(r.rules, id)
	return nil
}

type fakeBookingRepo struct {
	bookings  map[string]model.Booking
	createErr error
	nextID    int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]model.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking model.Booking) (model.Booking, error) {
	if r.createErr != nil {
		return model.Booking{}, r.createErr
	}
	r.nextID++
	booking.ID = fmt.Sprintf("booking-%d", r.nextID)
	r.bookings[booking.ID] = booking
	return booking, nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return model.Booking{}, sql.ErrNoRows
	}
	return booking, nil
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

func (r *fakeBookingRepo) ListByOwner(ctx context.Context, ownerID string, filter enum.BookingFilter, now time.Time) ([]model.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status enum.BookingStatus, reason string) (model.Booking, error) {
	booking, ok := r.bookings[id]
	if !ok {
		return model.Booking{}, sql.ErrNoRows
	}
	booking.Status = status
	booking.CancelReason = sql.NullString{String: reason, Valid: reason != ""}
	r.bookings[id] = booking
	return booking, nil
}

type fakeEventRepo struct{}

func (r *fakeEventRepo) ListUIDs(ctx context.Context, calendarID string) ([]string, error) {
	return nil, nil
}

func (r *fakeEventRepo) ApplySyncBatch(ctx context.Context, calendarID string, batch repository.SyncBatch) (repository.SyncStats, error) {
	return repository.SyncStats{}, nil
}

func (r *fakeEventRepo) ListOverlapping(ctx context.Context, calendarIDs []string, from, to time.Time) ([]model.Event, error) {
	return nil, nil
}

type recordingSink struct {
	events []notify.Event
}

func (s *recordingSink) Notify(ctx context.Context, event notify.Event, booking model.Booking, rule model.AvailabilityRule) {
	s.events = append(s.events, event)
}

// bookingDay is far enough in the future that no offered slot has elapsed.
var bookingDay = time.Date(2030, time.June, 3, 0, 0, 0, 0, time.UTC)

func activeRule() model.AvailabilityRule {
	return model.AvailabilityRule{
		ID:           "rule-1",
		SlotDuration: 30,
		Timezone:     "UTC",
		IsActive:     true,
		ShareToken:   "tok-abc",
		Days:         enum.AllDayOfWeek(),
		Hours: []model.TimeWindow{
			{Position: 0, StartTime: "09:00", EndTime: "10:00"},
		},
	}
}

func newTestService(rules *fakeRuleRepo, bookings *fakeBookingRepo, sink *recordingSink) *Service {
	return NewService(rules, bookings, availability.New(&fakeEventRepo{}, bookings), sink)
}

func validRequest() Request {
	return Request{
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		StartTime:  bookingDay.Add(9 * time.Hour),
		EndTime:    bookingDay.Add(9*time.Hour + 30*time.Minute),
	}
}

func TestCreateAdmitsOfferedSlot(t *testing.T) {
	bookings := newFakeBookingRepo()
	sink := &recordingSink{}
	svc := newTestService(newFakeRuleRepo(activeRule()), bookings, sink)

	created, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != enum.BookingPending {
		t.Errorf("status = %s, want PENDING", created.Status)
	}
	if created.RuleID != "rule-1" {
		t.Errorf("ruleId = %s, want rule-1", created.RuleID)
	}
	if len(sink.events) != 1 || sink.events[0] != notify.BookingCreated {
		t.Errorf("notifications = %v, want one BookingCreated", sink.events)
	}
}

func TestCreateInitialStatusConfigurable(t *testing.T) {
	t.Setenv("BOOKING_INITIAL_STATUS", "CONFIRMED")
	svc := newTestService(newFakeRuleRepo(activeRule()), newFakeBookingRepo(), &recordingSink{})

	created, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != enum.BookingConfirmed {
		t.Errorf("status = %s, want CONFIRMED", created.Status)
	}
}

func TestCreateUnknownTokenIsNotFound(t *testing.T) {
	svc := newTestService(newFakeRuleRepo(), newFakeBookingRepo(), &recordingSink{})

	_, err := svc.Create(context.Background(), "nope", validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !appError.IsCode(err, enum.ResourceNotFound) {
		t.Errorf("error is not ResourceNotFound: %v", err)
	}
}

func TestCreateInactiveRuleIsRejected(t *testing.T) {
	rule := activeRule()
	rule.IsActive = false
	svc := newTestService(newFakeRuleRepo(rule), newFakeBookingRepo(), &recordingSink{})

	_, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestCreateRejectsSlotNotOffered(t *testing.T) {
	svc := newTestService(newFakeRuleRepo(activeRule()), newFakeBookingRepo(), &recordingSink{})

	// Start shifted 10 minutes off the slot grid.
	req := validRequest()
	req.StartTime = req.StartTime.Add(10 * time.Minute)
	req.EndTime = req.EndTime.Add(10 * time.Minute)

	_, err := svc.Create(context.Background(), "tok-abc", req)
	if err == nil {
		t.Fatal("expected error")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestCreateRejectsWrongDuration(t *testing.T) {
	svc := newTestService(newFakeRuleRepo(activeRule()), newFakeBookingRepo(), &recordingSink{})

	req := validRequest()
	req.EndTime = req.StartTime.Add(time.Hour)

	_, err := svc.Create(context.Background(), "tok-abc", req)
	if err == nil {
		t.Fatal("expected error")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestCreateSlotAlreadyBookedIsRejected(t *testing.T) {
	bookings := newFakeBookingRepo()
	sink := &recordingSink{}
	svc := newTestService(newFakeRuleRepo(activeRule()), bookings, sink)

	if _, err := svc.Create(context.Background(), "tok-abc", validRequest()); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err == nil {
		t.Fatal("expected error for already-booked slot")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
	if len(sink.events) != 1 {
		t.Errorf("notifications = %v, want only the first booking's", sink.events)
	}
}

func TestCreateLostInsertRaceIsValidationError(t *testing.T) {
	bookings := newFakeBookingRepo()
	bookings.createErr = repository.ErrSlotTaken
	svc := newTestService(newFakeRuleRepo(activeRule()), bookings, &recordingSink{})

	_, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestConfirmPendingBooking(t *testing.T) {
	bookings := newFakeBookingRepo()
	svc := newTestService(newFakeRuleRepo(activeRule()), bookings, &recordingSink{})

	created, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	confirmed, err := svc.Confirm(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != enum.BookingConfirmed {
		t.Errorf("status = %s, want CONFIRMED", confirmed.Status)
	}

	// Confirming again is a no-op.
	again, err := svc.Confirm(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("second Confirm: %v", err)
	}
	if again.Status != enum.BookingConfirmed {
		t.Errorf("status after re-confirm = %s", again.Status)
	}
}

func TestConfirmCancelledBookingFails(t *testing.T) {
	bookings := newFakeBookingRepo()
	svc := newTestService(newFakeRuleRepo(activeRule()), bookings, &recordingSink{})

	created, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), created.ID, "guest asked"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	_, err = svc.Confirm(context.Background(), created.ID)
	if err == nil {
		t.Fatal("expected error confirming a cancelled booking")
	}
	if !appError.IsCode(err, enum.ValidationError) {
		t.Errorf("error is not a ValidationError: %v", err)
	}
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	bookings := newFakeBookingRepo()
	sink := &recordingSink{}
	svc := newTestService(newFakeRuleRepo(activeRule()), bookings, sink)

	created, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), created.ID, "schedule conflict")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != enum.BookingCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancelReason.String != "schedule conflict" {
		t.Errorf("cancel reason = %q", cancelled.CancelReason.String)
	}
	if len(sink.events) != 2 || sink.events[1] != notify.BookingCancelled {
		t.Errorf("notifications = %v, want BookingCreated then BookingCancelled", sink.events)
	}

	// The same slot is bookable again.
	if _, err := svc.Create(context.Background(), "tok-abc", validRequest()); err != nil {
		t.Errorf("rebooking a cancelled slot failed: %v", err)
	}
}

func TestCancelAlreadyCancelledIsNoOp(t *testing.T) {
	bookings := newFakeBookingRepo()
	sink := &recordingSink{}
	svc := newTestService(newFakeRuleRepo(activeRule()), bookings, sink)

	created, err := svc.Create(context.Background(), "tok-abc", validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), created.ID, "first reason"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	again, err := svc.Cancel(context.Background(), created.ID, "second reason")
	if err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if again.CancelReason.String != "first reason" {
		t.Errorf("cancel reason = %q, want the original kept", again.CancelReason.String)
	}
	if len(sink.events) != 2 {
		t.Errorf("notifications = %v, want no extra event for a repeat cancel", sink.events)
	}
}

func TestCancelUnknownBookingIsNotFound(t *testing.T) {
	svc := newTestService(newFakeRuleRepo(activeRule()), newFakeBookingRepo(), &recordingSink{})

	_, err := svc.Cancel(context.Background(), "missing", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !appError.IsCode(err, enum.ResourceNotFound) {
		t.Errorf("error is not ResourceNotFound: %v", err)
	}
}
