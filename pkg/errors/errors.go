package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Weight structure validation.
	ErrEmptyStructure      = New("EMPTY_STRUCTURE", http.StatusBadRequest, "no weight categories defined")
	ErrDuplicateCategory   = New("DUPLICATE_CATEGORY", http.StatusBadRequest, "duplicate weight category label")
	ErrIncompleteStructure = New("INCOMPLETE_STRUCTURE", http.StatusBadRequest, "weights must sum to 100")

	// Grade aggregation.
	ErrNoStructure        = New("NO_STRUCTURE", http.StatusNotFound, "no weight structure for class and partial")
	ErrInvalidStructure   = New("INVALID_STRUCTURE", http.StatusConflict, "weight structure is invalid")
	ErrNoGradablePartials = New("NO_GRADABLE_PARTIALS", http.StatusNotFound, "period has no partial with evaluations")

	// Group assignment.
	ErrEmptyRoster          = New("EMPTY_ROSTER", http.StatusNotFound, "class has no eligible students")
	ErrInsufficientStudents = New("INSUFFICIENT_STUDENTS", http.StatusBadRequest, "roster smaller than group size")
	ErrDrawInProgress       = New("DRAW_IN_PROGRESS", http.StatusConflict, "a draw is already running for this project")
	ErrStudentNotEligible   = New("STUDENT_NOT_ELIGIBLE", http.StatusBadRequest, "student not in class roster")
	ErrDuplicateAssignment  = New("DUPLICATE_ASSIGNMENT", http.StatusConflict, "student already assigned to another group")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code == target.Code
	}
	return false
}
