package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/pcarrot/internal/services/account"
	"github.com/mcoot/pcarrot/internal/session"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeNameInUse              = "NAME_IN_USE"
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidCurrentPassword = "INVALID_CURRENT_PASSWORD"
	CodeSamePassword           = "SAME_PASSWORD"
	CodeInternalError          = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError.
// Anything unrecognised, including account.ErrUnexpected, becomes a detail-free 500.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, account.ErrNameInUse):
		return &httpError{http.StatusConflict, APIError{CodeNameInUse, "Account name already in use"}}
	case errors.Is(err, account.ErrNotFound):
		return &httpError{http.StatusUnauthorized, APIError{CodeNotFound, "Invalid account name or password"}}
	case errors.Is(err, account.ErrInvalidCurrentPassword):
		return &httpError{http.StatusForbidden, APIError{CodeInvalidCurrentPassword, "Invalid current password"}}
	case errors.Is(err, account.ErrSamePassword):
		return &httpError{http.StatusBadRequest, APIError{CodeSamePassword, "New password must differ from the current one"}}
	case errors.Is(err, session.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
