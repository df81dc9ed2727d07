package apperrors

import "errors"

// Resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrPrecondition     = errors.New("precondition failed")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
)

// Document pipeline errors
var (
	ErrRender  = errors.New("document rendering failed")
	ErrStorage = errors.New("document storage failed")
	ErrRelay   = errors.New("email relay failed")
)

// CustomError represents application-specific errors with additional context.
// Err is the taxonomy sentinel, Cause is the underlying failure if any.
type CustomError struct {
	Err     error
	Cause   error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCause attaches the underlying error
func (e *CustomError) WithCause(cause error) *CustomError {
	e.Cause = cause
	return e
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// NewValidationError reports bad input, optionally naming the offending field.
func NewValidationError(field, message string) *CustomError {
	e := NewCustomError(ErrValidationFailed, message)
	if field != "" {
		e.Details = map[string]interface{}{"field": field}
	}
	return e
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) *CustomError {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) *CustomError {
	return NewCustomError(ErrConflict, message)
}

// NewPreconditionError reports an action attempted from a state that does not allow it.
func NewPreconditionError(message string) *CustomError {
	return NewCustomError(ErrPrecondition, message)
}

// NewRenderError wraps a document construction failure.
func NewRenderError(message string, cause error) *CustomError {
	return NewCustomError(ErrRender, message).WithCause(cause)
}

// NewStorageError wraps a failure to persist or fetch document bytes.
func NewStorageError(message string, cause error) *CustomError {
	return NewCustomError(ErrStorage, message).WithCause(cause)
}

// NewRelayError carries the relay's own message verbatim.
func NewRelayError(message string) *CustomError {
	return NewCustomError(ErrRelay, message)
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) *CustomError {
	return NewCustomError(ErrPermissionDenied, message)
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Kind returns a short stable label for the taxonomy class of err.
// Used for metrics labels and log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidationFailed):
		return "validation"
	case errors.Is(err, ErrConflict), errors.Is(err, ErrEmailAlreadyExists):
		return "conflict"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrRender):
		return "render"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrRelay):
		return "relay"
	case errors.Is(err, ErrResourceNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenInvalid):
		return "auth"
	default:
		return "internal"
	}
}

// MessageOf returns the human-readable message carried by a CustomError,
// or fallback when err carries none.
func MessageOf(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
