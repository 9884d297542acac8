// Package booking admits, confirms and cancels guest bookings. Admission
// recomputes availability at commit time and relies on the datastore's
// active-slot unique index to serialize concurrent requests for the same
// slot.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/availability"
	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/internal/notify"
	"github.com/fazamuttaqien/slotbook/internal/repository"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
)

// Request is a guest's booking attempt against a shared rule.
type Request struct {
	GuestName  string
	GuestEmail string
	Notes      string
	StartTime  time.Time
	EndTime    time.Time
}

type Service struct {
	rules         repository.RuleRepository
	bookings      repository.BookingRepository
	slots         *availability.Engine
	sink          notify.Sink
	initialStatus enum.BookingStatus
}

func NewService(rules repository.RuleRepository, bookings repository.BookingRepository, slots *availability.Engine, sink notify.Sink) *Service {
	return &Service{
		rules:         rules,
		bookings:      bookings,
		slots:         slots,
		sink:          sink,
		initialStatus: initialStatusFromEnv(),
	}
}

// initialStatusFromEnv reads BOOKING_INITIAL_STATUS; deployments that want
// owner review set it to PENDING, auto-accepting ones to CONFIRMED.
func initialStatusFromEnv() enum.BookingStatus {
	switch os.Getenv("BOOKING_INITIAL_STATUS") {
	case enum.BookingConfirmed.String():
		return enum.BookingConfirmed
	default:
		return enum.BookingPending
	}
}

// Create admits a booking through a rule's share token. The requested slot
// must exactly match a currently-offered slot; anything else (shifted start,
// wrong length, slot taken meanwhile) is rejected as a validation failure.
func (s *Service) Create(ctx context.Context, shareToken string, req Request) (model.Booking, error) {
	rule, err := s.rules.GetByShareToken(ctx, shareToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, appError.NewNotFoundError("Booking page", err)
		}
		return model.Booking{}, appError.NewStorageError("Failed to resolve share token", err)
	}
	if !rule.IsActive {
		return model.Booking{}, appError.NewValidationError("This booking page is no longer accepting bookings", nil)
	}

	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		return model.Booking{}, appError.NewValidationError("Rule has an invalid timezone: "+rule.Timezone, err)
	}

	// Availability is recomputed here, not trusted from whatever the guest
	// saw earlier; the offer may have changed since.
	offered, err := s.slots.AvailableSlots(ctx, rule, req.StartTime.In(loc))
	if err != nil {
		return model.Booking{}, err
	}

	if !slotOffered(offered, req.StartTime, req.EndTime) {
		return model.Booking{}, appError.NewValidationError("Requested slot is not available", nil)
	}

	created, err := s.bookings.Create(ctx, model.Booking{
		RuleID:     rule.ID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		Notes:      req.Notes,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Timezone:   rule.Timezone,
		Status:     s.initialStatus,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			// Another request won the race between recompute and insert.
			return model.Booking{}, appError.NewValidationError("Slot is no longer available", err)
		}
		return model.Booking{}, appError.NewStorageError("Failed to create booking", err)
	}

	s.sink.Notify(ctx, notify.BookingCreated, created, rule)
	return created, nil
}

// Confirm moves a pending booking to CONFIRMED. Confirming a confirmed
// booking is a no-op; a cancelled one cannot come back.
func (s *Service) Confirm(ctx context.Context, bookingID string) (model.Booking, error) {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}

	switch booking.Status {
	case enum.BookingConfirmed:
		return booking, nil
	case enum.BookingCancelled:
		return model.Booking{}, appError.NewValidationError("A cancelled booking cannot be confirmed", nil)
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, enum.BookingConfirmed, "")
	if err != nil {
		return model.Booking{}, appError.NewStorageError("Failed to confirm booking", err)
	}
	return updated, nil
}

// Cancel marks a booking CANCELLED and frees its slot. Cancelling an
// already-cancelled booking succeeds without effect; the original cancel
// reason is kept.
func (s *Service) Cancel(ctx context.Context, bookingID, reason string) (model.Booking, error) {
	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}

	if booking.Status == enum.BookingCancelled {
		return booking, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, enum.BookingCancelled, reason)
	if err != nil {
		return model.Booking{}, appError.NewStorageError("Failed to cancel booking", err)
	}

	rule, err := s.rules.GetByID(ctx, updated.RuleID)
	if err != nil {
		// The booking is already cancelled; a missing rule only costs the
		// notification payload.
		rule = model.AvailabilityRule{ID: updated.RuleID}
	}
	s.sink.Notify(ctx, notify.BookingCancelled, updated, rule)
	return updated, nil
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, bookingID string) (model.Booking, error) {
	return s.get(ctx, bookingID)
}

func (s *Service) get(ctx context.Context, bookingID string) (model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, appError.NewNotFoundError("Booking", err)
		}
		return model.Booking{}, appError.NewStorageError("Failed to load booking", err)
	}
	return booking, nil
}

func slotOffered(offered []availability.Slot, start, end time.Time) bool {
	for _, slot := range offered {
		if slot.StartTime.Equal(start) && slot.EndTime.Equal(end) {
			return true
		}
	}
	return false
}
