package controller

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fazamuttaqien/slotbook/internal/booking"
	"github.com/fazamuttaqien/slotbook/internal/dto"
	"github.com/fazamuttaqien/slotbook/internal/model"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
)

func bookingRequest(payload dto.CreateBookingDto) booking.Request {
	return booking.Request{
		GuestName:  payload.GuestName,
		GuestEmail: payload.GuestEmail,
		Notes:      payload.Notes,
		StartTime:  payload.StartTime,
		EndTime:    payload.EndTime,
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func toTimeWindows(windows []dto.TimeWindowDto) []model.TimeWindow {
	out := make([]model.TimeWindow, len(windows))
	for i, w := range windows {
		out[i] = model.TimeWindow{
			Position:  i,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		}
	}
	return out
}

// verifyBookingOwnership checks that the booking belongs to one of the
// user's rules.
func (h *Controller) verifyBookingOwnership(ctx context.Context, userID, bookingID string) error {
	booking, err := h.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appError.NewNotFoundError("Booking", err)
		}
		return appError.NewStorageError("Failed to load booking", err)
	}

	rule, err := h.rules.GetByID(ctx, booking.RuleID)
	if err != nil {
		return appError.NewStorageError("Failed to load booking's rule", err)
	}
	if rule.OwnerID != userID {
		return appError.NewUnauthorizedError(nil)
	}
	return nil
}

// verifyCalendarOwnership rejects rules referencing calendars the user does
// not own; a rule must not expose another user's busy times.
func (h *Controller) verifyCalendarOwnership(ctx context.Context, userID string, calendarIDs []string) error {
	for _, id := range calendarIDs {
		calendar, err := h.calendars.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appError.NewValidationError("Referenced calendar does not exist: "+id, err)
			}
			return appError.NewStorageError("Failed to verify calendar ownership", err)
		}
		if calendar.OwnerID != userID {
			return appError.NewUnauthorizedError(nil)
		}
	}
	return nil
}
