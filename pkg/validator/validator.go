package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/fazamuttaqien/slotbook/pkg/enum"
	"github.com/fazamuttaqien/slotbook/types"
	"github.com/go-playground/validator/v10"
)

const (
	SourceBody   = "body"
	SourceQuery  = "query"
	SourceParams = "params"
)

// ValidationErrorDetail describes a single validation failure.
type ValidationErrorDetail struct {
	Field   string `json:"field"`   // Field name that failed validation
	Message any    `json:"message"` // Validation error message(s) (can be map or string)
}

// ValidationErrorResponse is the structured JSON response for validation errors.
type ValidationErrorResponse struct {
	Message   string                  `json:"message"`   //	General message
	ErrorCode enum.ErrorCode          `json:"errorCode"` //	Specific error code
	Errors    []ValidationErrorDetail `json:"errors"`    // List of specific field errors
}

// Validator instance (create once for efficiency)
var Validate *validator.Validate

var timeHMRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

func init() {
	Validate = validator.New()

	// HH:mm wall-clock fields (rule daily hours)
	_ = Validate.RegisterValidation("time_hm", func(fl validator.FieldLevel) bool {
		return timeHMRegex.MatchString(fl.Field().String())
	})

	// IANA timezone names must resolve; bad names would otherwise only fail
	// deep inside slot computation.
	_ = Validate.RegisterValidation("timezone_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "" {
			return false
		}
		_, err := time.LoadLocation(name)
		return err == nil
	})

	// Customize how field names are reported (use json tags)
	Validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			return ""
		}
		return name
	})
}

// FormatValidationErrors translates validator errors into the desired response structure.
func FormatValidationErrors(ve validator.ValidationErrors) []ValidationErrorDetail {
	out := make([]ValidationErrorDetail, len(ve))
	for i, fe := range ve {
		out[i] = ValidationErrorDetail{
			Field:   fe.Field(), // Use Field() which might respect RegisterTagNameFunc
			Message: ValidationMessageForTag(fe),
		}
	}
	return out
}

// ValidationMessageForTag provides a basic error message for a validation tag.
func ValidationMessageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Value must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("Value must not exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Value must be %s or greater", fe.Param())
	case "time_hm":
		return "Must be a wall-clock time in HH:mm format"
	case "timezone_name":
		return "Must be a valid IANA timezone name"
	default:
		return fmt.Sprintf("Invalid value (validation: %s)", fe.Tag()) // Fallback message
	}
}

// GetValidatedDTOFromContext retrieves the validated DTO stored by validation middleware.
// Returns zero value of T and false if not found or type mismatch.
func GetValidatedDTOFromContext[T any](ctx context.Context) (T, bool) {
	dto, ok := ctx.Value(types.ValidatedDTOKey).(T)
	return dto, ok
}

// WriteValidationErrorResponse is a helper to write structured JSON error responses.
func WriteValidationErrorResponse(
	w http.ResponseWriter,
	code int, errorCode enum.ErrorCode,
	message string, detail []ValidationErrorDetail,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	response := ValidationErrorResponse{
		Message:   message,
		ErrorCode: errorCode,
		Errors:    detail,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding validation response: %v\n", err)
	}
}
