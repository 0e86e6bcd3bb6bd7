package common

import (
	"encoding/json"
	"net/http"
	"studylab-api/logger"

	"github.com/sirupsen/logrus"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Send writes the error as JSON. The wrapped error is logged, never sent.
func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		entry := logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		})
		if e.Code >= http.StatusInternalServerError {
			entry.Error(e.Message)
		} else {
			entry.Debug(e.Message)
		}
	}

	WriteJSON(w, e.Code, e)
}

// WriteJSON encodes payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode JSON response")
	}
}
