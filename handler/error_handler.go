package handler

import (
	"net/http"
	"studylab-api/common"
)

// ErrorHandlingMiddleware adapts a handler that returns *common.AppError
// into an http.HandlerFunc, sending any returned error as JSON.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// NotFound answers unmatched routes with the standard error body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	common.NewAppError(http.StatusNotFound, "Not Found", nil).Send(w)
}
