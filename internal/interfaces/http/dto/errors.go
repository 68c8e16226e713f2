package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used for payloads failing field validation
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes. The map
// covers every code the order pipeline can surface; anything unknown is a 500.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusUnprocessableEntity,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,

	// Storefront ordered nothing the marketplace carries.
	"NO_USABLE_ITEMS": http.StatusNotFound,
	// No logistics partner covers the destination.
	"NO_SHIPMENT_RATE": http.StatusBadRequest,

	// Lifecycle guards: the order exists but refuses the verb.
	"ORDER_ALREADY_CANCELLED": http.StatusMethodNotAllowed,
	"ORDER_NOT_MUTABLE":       http.StatusMethodNotAllowed,

	"INVALID_INPUT":       http.StatusUnprocessableEntity,
	"INVALID_ADDRESS":     http.StatusUnprocessableEntity,
	"INVALID_EXTERNAL_ID": http.StatusUnprocessableEntity,
	"INVALID_STATE":       http.StatusUnprocessableEntity,

	"COUPON_NOT_FOUND": http.StatusNotFound,
	"ALREADY_EXISTS":   http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
