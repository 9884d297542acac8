package controller

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/fazamuttaqien/slotbook/helper"
	"github.com/fazamuttaqien/slotbook/internal/dto"
	"github.com/fazamuttaqien/slotbook/internal/model"
	"github.com/fazamuttaqien/slotbook/middleware"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
	"github.com/fazamuttaqien/slotbook/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// POST /calendar
func (h *Controller) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	dto, ok := validator.GetValidatedDTOFromContext[dto.CreateCalendarDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	// Kind-specific payload requirements are not expressible as field tags.
	switch dto.Kind {
	case enum.SourceURL:
		if dto.Url == "" {
			appError.WriteError(w, appError.NewValidationError("URL calendars require a feed url", nil))
			return
		}
	case enum.SourceFile:
		if dto.Payload == "" {
			appError.WriteError(w, appError.NewValidationError("FILE calendars require an ICS payload", nil))
			return
		}
	}

	created, err := h.calendars.Create(ctx, model.CalendarSource{
		OwnerID: userID,
		Name:    dto.Name,
		Kind:    dto.Kind,
		Origin:  sql.NullString{String: dto.Url, Valid: dto.Url != ""},
		Payload: []byte(dto.Payload),
	})
	if err != nil {
		appError.WriteError(w, appError.NewStorageError("Failed to create calendar", err))
		return
	}

	helper.ResponseJson(w, http.StatusCreated, map[string]any{
		"message":  "Calendar created successfully",
		"calendar": created,
	})
}

// GET /calendar
func (h *Controller) GetUserCalendars(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	calendars, err := h.calendars.ListByOwner(ctx, userID)
	if err != nil {
		appError.WriteError(w, appError.NewStorageError("Failed to list calendars", err))
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"calendars": calendars,
	})
}

// GET /calendar/{calendarId}
func (h *Controller) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	calendarID := chi.URLParam(r, "calendarId")
	calendar, err := h.calendars.GetByID(ctx, calendarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			appError.WriteError(w, appError.NewNotFoundError("Calendar", err))
			return
		}
		appError.WriteError(w, appError.NewStorageError("Failed to load calendar", err))
		return
	}
	if calendar.OwnerID != userID {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"calendar": calendar,
	})
}

// DELETE /calendar/{calendarId}
func (h *Controller) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	calendarID := chi.URLParam(r, "calendarId")
	if err := h.calendars.Delete(ctx, calendarID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			appError.WriteError(w, appError.NewNotFoundError("Calendar", err))
			return
		}
		appError.WriteError(w, appError.NewStorageError("Failed to delete calendar", err))
		return
	}

	helper.ResponseJson(w, http.StatusOK, helper.SimpleMessage{Message: "Calendar deleted successfully"})
}

// POST /calendar/{calendarId}/sync
func (h *Controller) TriggerCalendarSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	calendarID := chi.URLParam(r, "calendarId")
	calendar, err := h.calendars.GetByID(ctx, calendarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			appError.WriteError(w, appError.NewNotFoundError("Calendar", err))
			return
		}
		appError.WriteError(w, appError.NewStorageError("Failed to load calendar", err))
		return
	}
	if calendar.OwnerID != userID {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	stats, err := h.scheduler.TriggerSync(ctx, calendarID)
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"message": "Calendar synced successfully",
		"stats":   stats,
	})
}
