package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/fazamuttaqien/slotbook/pkg/enum"
	pkgValidator "github.com/fazamuttaqien/slotbook/pkg/validator"
	"github.com/fazamuttaqien/slotbook/types"

	"github.com/go-playground/validator/v10"
)

// WithValidation creates middleware to validate request data against a struct (DTO).
// T is the type of the struct to validate against.
// source indicates where to find the data ("body", "query", "params").
func WithValidation[T any](source string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Create a zero instance of the target struct type T
			var dto T

			var err error
			switch source {
			case pkgValidator.SourceBody:
				// Decode JSON body
				if r.Body == nil {
					err = fmt.Errorf("request body is empty")
				} else {
					decoder := json.NewDecoder(r.Body)
					decodeErr := decoder.Decode(&dto)
					// A missing body is only acceptable when the zero DTO
					// validates (all fields optional).
					if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
						err = fmt.Errorf("failed to decode request body: %w", decodeErr)
					}
				}
				if err != nil {
					pkgValidator.WriteValidationErrorResponse(w, http.StatusBadRequest, enum.ValidationError, "Invalid request body.", nil)
					return
				}

			case pkgValidator.SourceQuery, pkgValidator.SourceParams:
				// Query/path parameters are read directly in the handlers via
				// r.URL.Query() / chi.URLParam; only bodies are validated here.
				pkgValidator.WriteValidationErrorResponse(w, http.StatusNotImplemented, enum.InternalServerError, "Non-body validation not supported.", nil)
				return

			default:
				// Invalid source configuration
				pkgValidator.WriteValidationErrorResponse(w, http.StatusInternalServerError, enum.InternalServerError, "Internal server error: Invalid validation source.", nil)
				return
			}

			// Perform validation
			validationErr := pkgValidator.Validate.Struct(dto)
			if validationErr != nil {
				var ve validator.ValidationErrors
				if ok := errors.As(validationErr, &ve); ok {
					formattedErrors := pkgValidator.FormatValidationErrors(ve)
					pkgValidator.WriteValidationErrorResponse(w, http.StatusBadRequest, enum.ValidationError, "Validation failed", formattedErrors)
					return
				} else {
					// Handle unexpected error during validation itself
					pkgValidator.WriteValidationErrorResponse(w, http.StatusInternalServerError, enum.InternalServerError, "Error during validation process.", nil)
					log.Printf("Unexpected validation error: %v\n", validationErr)
					return
				}
			}

			// Validation successful! Store the validated DTO in the context.
			ctx := context.WithValue(r.Context(), types.ValidatedDTOKey, dto)

			// Call the next handler with the updated context.
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
