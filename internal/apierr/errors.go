package apierr

import (
	"encoding/json"
	"net/http"
)

// ErrorCode represents a structured error code
type ErrorCode string

// Error code constants organized by category
const (
	// AUTH_ - Authentication and authorization errors
	ErrAuthMissing   ErrorCode = "AUTH_MISSING"
	ErrAuthInvalid   ErrorCode = "AUTH_INVALID"
	ErrAuthForbidden ErrorCode = "AUTH_FORBIDDEN"

	// MARKET_ - Market-data fetch errors
	ErrMarketUnavailable ErrorCode = "MARKET_UNAVAILABLE"
	ErrMarketNotFound    ErrorCode = "MARKET_NOT_FOUND"

	// SEARCH_ - Search operation errors
	ErrSearchInvalidQuery ErrorCode = "SEARCH_INVALID_QUERY"

	// CACHE_ - Cache administration errors
	ErrCacheUnknownType ErrorCode = "CACHE_UNKNOWN_TYPE"

	// VALIDATION_ - Request validation errors
	ErrValidationInvalidValue ErrorCode = "VALIDATION_INVALID_VALUE"
	ErrValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"

	// RATE_LIMIT_ - Rate limiting errors
	ErrRateLimitGlobal ErrorCode = "RATE_LIMIT_GLOBAL"
	ErrRateLimitIP     ErrorCode = "RATE_LIMIT_IP"

	// SYSTEM_ - System and server errors
	ErrSystemInternal ErrorCode = "SYSTEM_INTERNAL"
)

// Error represents a structured API error
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	status  int                    // HTTP status code (not serialized)
}

// ErrorResponse is the top-level error response wrapper
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// New creates a new API error
func New(code ErrorCode, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		status:  status,
	}
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Status returns the HTTP status code
func (e *Error) Status() int {
	return e.status
}

// WriteError writes a structured error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// Helper functions for common errors

// AuthMissing creates an authentication missing error
func AuthMissing(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return New(ErrAuthMissing, message, http.StatusUnauthorized)
}

// AuthInvalid creates an invalid authentication error
func AuthInvalid(message string) *Error {
	if message == "" {
		message = "Invalid authentication credentials"
	}
	return New(ErrAuthInvalid, message, http.StatusUnauthorized)
}

// MarketUnavailable signals that the upstream fetch failed and no cached
// data was live; callers should retry later.
func MarketUnavailable(message string) *Error {
	if message == "" {
		message = "Market data temporarily unavailable - please retry later"
	}
	return New(ErrMarketUnavailable, message, http.StatusServiceUnavailable)
}

// MarketNotFound creates a not-found error for an unknown collection
func MarketNotFound(message string) *Error {
	if message == "" {
		message = "Collection not found"
	}
	return New(ErrMarketNotFound, message, http.StatusNotFound)
}

// SearchInvalidQuery creates a search invalid query error
func SearchInvalidQuery(message string) *Error {
	if message == "" {
		message = "Invalid search query"
	}
	return New(ErrSearchInvalidQuery, message, http.StatusBadRequest)
}

// CacheUnknownType creates an unknown cache type error
func CacheUnknownType(cacheType string) *Error {
	return New(ErrCacheUnknownType, "Unknown cache type", http.StatusBadRequest).
		WithDetails(map[string]interface{}{"type": cacheType})
}

// ValidationInvalidValue creates an invalid value error
func ValidationInvalidValue(message string) *Error {
	if message == "" {
		message = "Invalid parameter value"
	}
	return New(ErrValidationInvalidValue, message, http.StatusBadRequest)
}

// RateLimitGlobal creates a global rate limit error
func RateLimitGlobal() *Error {
	return New(ErrRateLimitGlobal, "Rate limit exceeded - too many requests", http.StatusTooManyRequests)
}

// RateLimitIP creates a per-IP rate limit error
func RateLimitIP() *Error {
	return New(ErrRateLimitIP, "Rate limit exceeded for your address", http.StatusTooManyRequests)
}

// SystemInternal creates an internal server error
func SystemInternal(message string) *Error {
	if message == "" {
		message = "Internal server error"
	}
	return New(ErrSystemInternal, message, http.StatusInternalServerError)
}
