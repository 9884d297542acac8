package controller

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/fazamuttaqien/slotbook/helper"
	"github.com/fazamuttaqien/slotbook/internal/dto"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
	"github.com/fazamuttaqien/slotbook/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// GET /public/{shareToken}
// Booking-page metadata for guests: rule name, duration, timezone. Nothing
// owner-internal (calendar ids, caps) leaves through this endpoint.
func (h *Controller) GetPublicRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rule, err := h.rules.GetByShareToken(ctx, chi.URLParam(r, "shareToken"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			appError.WriteError(w, appError.NewNotFoundError("Booking page", err))
			return
		}
		appError.WriteError(w, appError.NewStorageError("Failed to load booking page", err))
		return
	}
	if !rule.IsActive {
		appError.WriteError(w, appError.NewNotFoundError("Booking page", nil))
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"name":         rule.Name,
		"slotDuration": rule.SlotDuration,
		"timezone":     rule.Timezone,
		"days":         rule.Days,
	})
}

// GET /public/{shareToken}/slots?date=YYYY-MM-DD
func (h *Controller) GetPublicAvailableSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rule, err := h.rules.GetByShareToken(ctx, chi.URLParam(r, "shareToken"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			appError.WriteError(w, appError.NewNotFoundError("Booking page", err))
			return
		}
		appError.WriteError(w, appError.NewStorageError("Failed to load booking page", err))
		return
	}

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		appError.WriteError(w, appError.NewValidationError("Query parameter 'date' is required (YYYY-MM-DD)", nil))
		return
	}

	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		appError.WriteError(w, appError.NewValidationError("Rule has an invalid timezone: "+rule.Timezone, err))
		return
	}

	// The date names a calendar day in the rule's timezone.
	date, err := time.ParseInLocation("2006-01-02", dateParam, loc)
	if err != nil {
		appError.WriteError(w, appError.NewValidationError("Date must be in YYYY-MM-DD format", err))
		return
	}

	slots, err := h.slots.AvailableSlots(ctx, rule, date)
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"date":     dateParam,
		"timezone": rule.Timezone,
		"slots":    slots,
	})
}

// POST /public/{shareToken}/bookings
func (h *Controller) CreatePublicBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, ok := validator.GetValidatedDTOFromContext[dto.CreateBookingDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	created, err := h.admission.Create(ctx, chi.URLParam(r, "shareToken"), bookingRequest(payload))
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	helper.ResponseJson(w, http.StatusCreated, map[string]any{
		"message": "Booking created successfully",
		"booking": created,
	})
}

// POST /public/bookings/{bookingId}/cancel
// Guests cancel with the booking id they received at creation time.
func (h *Controller) CancelPublicBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, ok := validator.GetValidatedDTOFromContext[dto.CancelBookingDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	cancelled, err := h.admission.Cancel(ctx, chi.URLParam(r, "bookingId"), payload.Reason)
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"message": "Booking cancelled successfully",
		"booking": cancelled,
	})
}
