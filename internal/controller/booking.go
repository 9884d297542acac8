package controller

import (
	"net/http"
	"time"

	"github.com/fazamuttaqien/slotbook/helper"
	"github.com/fazamuttaqien/slotbook/internal/dto"
	"github.com/fazamuttaqien/slotbook/middleware"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
	"github.com/fazamuttaqien/slotbook/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// GET /booking?filter=UPCOMING|PAST|CANCELLED
func (h *Controller) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	filter := enum.BookingFilter(r.URL.Query().Get("filter"))
	switch filter {
	case "", enum.BookingFilterUpcoming:
		filter = enum.BookingFilterUpcoming
	case enum.BookingFilterPast, enum.BookingFilterCancelled:
	default:
		appError.WriteError(w, appError.NewValidationError("Filter must be one of UPCOMING, PAST, CANCELLED", nil))
		return
	}

	bookings, err := h.bookings.ListByOwner(ctx, userID, filter, time.Now())
	if err != nil {
		appError.WriteError(w, appError.NewStorageError("Failed to list bookings", err))
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"bookings": bookings,
	})
}

// PUT /booking/{bookingId}/confirm
func (h *Controller) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	bookingID := chi.URLParam(r, "bookingId")
	if err := h.verifyBookingOwnership(ctx, userID, bookingID); err != nil {
		appError.WriteError(w, err)
		return
	}

	confirmed, err := h.admission.Confirm(ctx, bookingID)
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"message": "Booking confirmed successfully",
		"booking": confirmed,
	})
}

// DELETE /booking/{bookingId}
func (h *Controller) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	dto, ok := validator.GetValidatedDTOFromContext[dto.CancelBookingDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	bookingID := chi.URLParam(r, "bookingId")
	if err := h.verifyBookingOwnership(ctx, userID, bookingID); err != nil {
		appError.WriteError(w, err)
		return
	}

	cancelled, err := h.admission.Cancel(ctx, bookingID, dto.Reason)
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"message": "Booking cancelled successfully",
		"booking": cancelled,
	})
}
