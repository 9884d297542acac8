package controller

import (
	"database/sql"
	"net/http"

	"github.com/fazamuttaqien/slotbook/helper"
	"github.com/fazamuttaqien/slotbook/internal/dto"
	"github.com/fazamuttaqien/slotbook/internal/model"
	appError "github.com/fazamuttaqien/slotbook/pkg/app-error"
	"github.com/fazamuttaqien/slotbook/pkg/enum"
	pkgJwt "github.com/fazamuttaqien/slotbook/pkg/jwt"
	"github.com/fazamuttaqien/slotbook/pkg/validator"
)

// POST /auth/register
func (h *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dto, ok := validator.GetValidatedDTOFromContext[dto.RegisterDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	// 1. Check if user already exists
	var exists bool
	err := h.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", dto.Email)
	if err != nil {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Failed to check user existence", err))
		return
	}
	if exists {
		appError.WriteError(w, appError.NewAppError(enum.AuthEmailAlreadyExists, "User with this email already exists", nil))
		return
	}

	// 2. Hash password
	hashedPassword, err := helper.HashPassword(dto.Password)
	if err != nil {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Failed to hash password", err))
		return
	}

	// 3. Insert User
	var createdUser model.User
	userInsertQuery := `
		INSERT INTO users (name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, name, email, created_at, updated_at; -- Do NOT return password hash
	`
	if err := h.db.GetContext(ctx, &createdUser, userInsertQuery, dto.Name, dto.Email, hashedPassword); err != nil {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Failed to insert user", err))
		return
	}

	response := map[string]any{
		"message": "User created successfully",
		"user":    createdUser,
	}
	helper.ResponseJson(w, http.StatusCreated, response)
}

// POST /auth/login
func (h *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dto, ok := validator.GetValidatedDTOFromContext[dto.LoginDto](ctx)
	if !ok {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Validated DTO not found in context", nil))
		return
	}

	// 1. Find User by Email (including password hash)
	var user model.User
	query := `SELECT id, name, email, password, created_at, updated_at FROM users WHERE email = $1;`
	err := h.db.GetContext(ctx, &user, query, dto.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			// Use specific error code for user not found during login attempt
			appError.WriteError(w, appError.NewAppError(enum.AuthUserNotFound, "Invalid email or password", nil))
			return
		}
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Failed to query user", err))
		return
	}

	// 2. Compare Password
	err = helper.ComparePassword(user.Password, dto.Password)
	if err != nil {
		appError.WriteError(w, appError.NewAppError(enum.AuthUnauthorizedAccess, "Invalid email or password", nil))
		return
	}

	// 3. Generate JWT
	accessToken, expiresAt, err := pkgJwt.SignJwtToken(user.ID)
	if err != nil {
		appError.WriteError(w, appError.NewAppError(enum.InternalServerError, "Failed to generate access token", err))
		return
	}

	// 4. Prepare and Return Response (omit password)
	user.Password = "" // Explicitly clear password before returning

	response := map[string]any{
		"message":     "User logged in successfully",
		"user":        user,
		"accessToken": accessToken,
		"expiresAt":   expiresAt,
	}
	helper.ResponseJson(w, http.StatusOK, response)
}
