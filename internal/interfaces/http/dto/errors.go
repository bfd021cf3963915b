package dto

import "net/http"

// Transport-level error codes
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps stable reason codes to HTTP status codes.
// Domain codes pass through the response unchanged so clients can branch
// on them; only the status line is derived here.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,

	// Lookup failures, including every broken ownership chain
	"NOT_FOUND":        http.StatusNotFound,
	"CLIENT_NOT_FOUND": http.StatusNotFound,

	// Malformed input -> 400 Bad Request
	"INVALID_INPUT": http.StatusBadRequest,
	"INVALID_DATES": http.StatusBadRequest,

	// Financial integrity violations -> 422 Unprocessable Entity
	"RESIDUAL_EXCEEDED":                http.StatusUnprocessableEntity,
	"RESIDUAL_EXHAUSTED":               http.StatusUnprocessableEntity,
	"OVERPAYMENT":                      http.StatusUnprocessableEntity,
	"AMOUNT_BELOW_PAID":                http.StatusUnprocessableEntity,
	"NOTHING_TO_UNPAY":                 http.StatusUnprocessableEntity,
	"DATE_OUT_OF_BOUNDS":               http.StatusUnprocessableEntity,
	"SHORTENING_VIOLATES_INSTALLMENTS": http.StatusUnprocessableEntity,
	"HAS_PENDING_INSTALLMENTS":         http.StatusUnprocessableEntity,
	"HAS_RESIDUAL_CREDITS":             http.StatusUnprocessableEntity,
	"HAS_CONTRACTS":                    http.StatusUnprocessableEntity,

	// State conflicts -> 409 Conflict
	"CONTRACT_CLOSED":      http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes default to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
