package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps request bodies at 1 MiB.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads a single JSON object from the request body into payload.
func DecodeJSON(w http.ResponseWriter, r *http.Request, payload interface{}) *AppError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewAppError(http.StatusRequestEntityTooLarge, "Request body too large", nil)
		}
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}
	return nil
}

// ValidateAndDecode decodes the body into payload and runs its validate tags.
func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) *AppError {
	if appErr := DecodeJSON(w, r, payload); appErr != nil {
		return appErr
	}
	return ValidateStruct(payload)
}

func ValidateStruct(payload interface{}) *AppError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}

	appErr := NewAppError(http.StatusBadRequest, "Validation failed", nil)
	for _, fe := range validationErrors {
		appErr.Details = append(appErr.Details, FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return appErr
}

// ValidateVar checks a single value against a validator tag, e.g. "required,email".
func ValidateVar(value interface{}, tag string) error {
	return validate.Var(value, tag)
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "RegisterRequest.email"; drop the struct name.
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
