package httpapi

import (
	"errors"
	"net/http"

	"inventoryapi/internal/inventory"
)

// ErrorMessage is the JSON envelope of every failed API call.
type ErrorMessage struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

const internalErrorMessage = "Internal Server Error"

// errorMessage maps a pipeline error to its envelope. Only the sentinel text
// is exposed, never the wrapped cause.
func errorMessage(err error) ErrorMessage {
	var (
		code   int
		status int
		cause  error
	)
	switch {
	case errors.Is(err, inventory.ErrMissingField):
		code, status, cause = -4, http.StatusBadRequest, inventory.ErrMissingField
	case errors.Is(err, inventory.ErrExpired):
		code, status, cause = -2, http.StatusNotFound, inventory.ErrExpired
	case errors.Is(err, inventory.ErrNotFound):
		code, status, cause = -2, http.StatusNotFound, inventory.ErrNotFound
	case errors.Is(err, inventory.ErrStoreUnavailable):
		code, status, cause = -6, http.StatusInternalServerError, inventory.ErrStoreUnavailable
	case errors.Is(err, inventory.ErrPublishFailure):
		code, status, cause = -6, http.StatusInternalServerError, inventory.ErrPublishFailure
	default:
		return ErrorMessage{Code: -5, StatusCode: http.StatusInternalServerError, Message: internalErrorMessage}
	}
	return ErrorMessage{Code: code, StatusCode: status, Message: cause.Error()}
}
