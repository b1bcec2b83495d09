package cverror

import "net/http"

type (
	// A CVError represents the error format that can be rendered by the clipvault server.
	CVError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// Tags used to distinguish failure kinds so clients can branch on them.
const (
	TagValidation = "validation"
	TagNotFound   = "not-found"
	TagForbidden  = "forbidden"
	TagGone       = "gone"
	TagConflict   = "conflict"
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if cverr, ok := err.(*CVError); ok && cverr.HTTPCode != 0 {
		return cverr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new CVError with the given message.
func New(message string) *CVError {
	return &CVError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new CVError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *CVError {
	return &CVError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NewValidation returns an error for malformed or out-of-policy input.
func NewValidation(message string) *CVError {
	return NewWithTagCode(http.StatusBadRequest, TagValidation, message)
}

// NewNotFound returns an error for a record invisible to the caller's scope.
func NewNotFound(message string) *CVError {
	return NewWithTagCode(http.StatusNotFound, TagNotFound, message)
}

// NewForbidden returns an error for a record the caller may not act on.
func NewForbidden(message string) *CVError {
	return NewWithTagCode(http.StatusForbidden, TagForbidden, message)
}

// NewGone returns an error for a record that existed but has lapsed.
func NewGone(message string) *CVError {
	return NewWithTagCode(http.StatusGone, TagGone, message)
}

// NewConflict returns an error for an uncaught uniqueness violation.
func NewConflict(message string) *CVError {
	return NewWithTagCode(http.StatusConflict, TagConflict, message)
}

// Is returns true when err is a CVError carrying the given tag.
func Is(err error, tag string) bool {
	cverr, ok := err.(*CVError)
	return ok && cverr.FieldError.Tag == tag
}

// Error implements error interface.
func (e *CVError) Error() string {
	return e.FieldError.Message
}
