package controller

import (
	"context"
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

// POST /rule
func (h *Controller) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	dto, ok := validator.GetValidatedDTOFromContext[dto.CreateRuleDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	if err := h.verifyCalendarOwnership(ctx, userID, dto.CalendarIds); err != nil {
		appError.WriteError(w, err)
		return
	}

	rule := model.AvailabilityRule{
		OwnerID:           userID,
		Name:              dto.Name,
		SlotDuration:      dto.SlotDuration,
		Buffer:            dto.Buffer,
		Timezone:          dto.Timezone,
		StartDate:         nullTime(dto.StartDate),
		EndDate:           nullTime(dto.EndDate),
		MaxBookingsPerDay: nullInt(dto.MaxBookingsPerDay),
		IsActive:          true,
		ShareToken:        helper.NewShareToken(),
		Days:              dto.Days,
		Hours:             toTimeWindows(dto.Hours),
		CalendarIDs:       dto.CalendarIds,
	}

	created, err := h.rules.Create(ctx, rule)
	if err != nil {
		appError.WriteError(w, appError.NewStorageError("Failed to create availability rule", err))
		return
	}

	helper.ResponseJson(w, http.StatusCreated, map[string]any{
		"message": "Availability rule created successfully",
		"rule":    created,
	})
}

// GET /rule
func (h *Controller) GetUserRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	rules, err := h.rules.ListByOwner(ctx, userID)
	if err != nil {
		appError.WriteError(w, appError.NewStorageError("Failed to list availability rules", err))
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"rules": rules,
	})
}

// GET /rule/{ruleId}
func (h *Controller) GetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	rule, err := h.ownedRule(ctx, chi.URLParam(r, "ruleId"), userID)
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"rule": rule,
	})
}

// PUT /rule/{ruleId}
func (h *Controller) UpdateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	dto, ok := validator.GetValidatedDTOFromContext[dto.UpdateRuleDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	existing, err := h.ownedRule(ctx, chi.URLParam(r, "ruleId"), userID)
	if err != nil {
		appError.WriteError(w, err)
		return
	}

	if err := h.verifyCalendarOwnership(ctx, userID, dto.CalendarIds); err != nil {
		appError.WriteError(w, err)
		return
	}

	existing.Name = dto.Name
	existing.SlotDuration = dto.SlotDuration
	existing.Buffer = dto.Buffer
	existing.Timezone = dto.Timezone
	existing.StartDate = nullTime(dto.StartDate)
	existing.EndDate = nullTime(dto.EndDate)
	existing.MaxBookingsPerDay = nullInt(dto.MaxBookingsPerDay)
	existing.Days = dto.Days
	existing.Hours = toTimeWindows(dto.Hours)
	existing.CalendarIDs = dto.CalendarIds

	updated, err := h.rules.Update(ctx, existing)
	if err != nil {
		appError.WriteError(w, appError.NewStorageError("Failed to update availability rule", err))
		return
	}

	helper.ResponseJson(w, http.StatusOK, map[string]any{
		"message": "Availability rule updated successfully",
		"rule":    updated,
	})
}

// PUT /rule/{ruleId}/active
func (h *Controller) SetRuleActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	dto, ok := validator.GetValidatedDTOFromContext[dto.SetRuleActiveDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	ruleID := chi.URLParam(r, "ruleId")
	if err := h.rules.SetActive(ctx, ruleID, userID, *dto.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			appError.WriteError(w, appError.NewNotFoundError("Availability rule", err))
			return
		}
		appError.WriteError(w, appError.NewStorageError("Failed to update availability rule", err))
		return
	}

	helper.ResponseJson(w, http.StatusOK, helper.SimpleMessage{Message: "Availability rule updated successfully"})
}

// DELETE /rule/{ruleId}
func (h *Controller) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		appError.WriteError(w, appError.NewUnauthorizedError(nil))
		return
	}

	ruleID := chi.URLParam(r, "ruleId")
	if err := h.rules.Delete(ctx, ruleID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			appError.WriteError(w, appError.NewNotFoundError("Availability rule", err))
			return
		}
		appError.WriteError(w, appError.NewStorageError("Failed to delete availability rule", err))
		return
	}

	helper.ResponseJson(w, http.StatusOK, helper.SimpleMessage{Message: "Availability rule deleted successfully"})
}

// ownedRule loads a rule and enforces that it belongs to userID.
func (h *Controller) ownedRule(ctx context.Context, ruleID, userID string) (model.AvailabilityRule, error) {
	rule, err := h.rules.GetByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AvailabilityRule{}, appError.NewNotFoundError("Availability rule", err)
		}
		return model.AvailabilityRule{}, appError.NewStorageError("Failed to load availability rule", err)
	}
	if rule.OwnerID != userID {
		return model.AvailabilityRule{}, appError.NewUnauthorizedError(nil)
	}
	return rule, nil
}
