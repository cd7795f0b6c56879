package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Membership errors
var (
	ErrClubNotFound       = errors.New("club not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrDuplicateMember    = errors.New("user is already a member of this club")
	ErrLeaderExists       = errors.New("club already has a leader")
	ErrCannotRemoveLeader = errors.New("current leader cannot be removed")
	ErrDemotionFailed     = errors.New("could not demote current leader")
)

// Enrollment errors
var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrAlreadyEnrolled   = errors.New("user is already enrolled in this activity")
	ErrNotEnrolled       = errors.New("user is not enrolled in this activity")
	ErrActivityNotOpen   = errors.New("activity is not open for enrollment")
	ErrCapacityExceeded  = errors.New("activity is at full capacity")
	ErrInvalidTransition = errors.New("illegal activity status transition")
)

// Points errors
var (
	ErrInsufficientPoints = errors.New("points balance is insufficient")
)

// Transient and storage errors.
// ErrBusy is surfaced when a per-club or per-activity lock could not be
// acquired in time; callers retry it with bounded backoff before giving up.
var (
	ErrBusy    = errors.New("resource is busy, try again")
	ErrStorage = errors.New("storage failure")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// IsTerminal reports whether retrying err could change the outcome.
// NotFound, conflict, precondition and invariant errors are terminal;
// only ErrBusy is worth retrying.
func IsTerminal(err error) bool {
	return !errors.Is(err, ErrBusy)
}

// Is returns whether target matches any of the errors in errList
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

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
