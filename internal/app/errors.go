package app

import (
	"errors"
	"fmt"
)

var (
	// ErrUserExists is returned on duplicate signup. The message is shown to
	// end users verbatim.
	ErrUserExists = errors.New("User already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	ErrSignupFieldsRequired = errors.New("name, email and password are required")
	ErrLoginFieldsRequired  = errors.New("email and password are required")

	ErrInvalidRole = errors.New("Invalid role")

	// ErrForbidden is returned when the caller is authenticated but the role
	// matrix denies the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrCannotDeleteSold guards sold pieces from deletion; they must be
	// archived so order history keeps resolving.
	ErrCannotDeleteSold = errors.New("Cannot delete sold items. Please archive instead.")

	ErrStatusRequired = errors.New("status is required")
)

// NotFoundError marks a missing product/artist/order/commission/user. The
// message is the client-facing error string.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

// NotFoundf builds a NotFoundError with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvalidStateError marks an operation rejected by current entity state, such
// as ordering a piece that already sold.
type InvalidStateError struct {
	msg string
}

func (e *InvalidStateError) Error() string { return e.msg }

// InvalidStatef builds an InvalidStateError with a formatted message.
func InvalidStatef(format string, args ...any) error {
	return &InvalidStateError{msg: fmt.Sprintf(format, args...)}
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}
