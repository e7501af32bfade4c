package status

import (
	"errors"
	"fmt"
)

const (
	// PreconditionFailed indicates that some pre-condition for the operation hasn't been fulfilled
	PreconditionFailed Type = 1

	// PermissionDenied indicates that user has no permissions to view data
	PermissionDenied Type = 2

	// NotFound indicates that the object wasn't found in the system
	NotFound Type = 3

	// Internal indicates some generic internal error
	Internal Type = 4

	// InvalidArgument indicates some generic invalid argument error
	InvalidArgument Type = 5

	// AlreadyExists indicates a generic error when an object already exists in the system
	AlreadyExists Type = 6

	// Unauthorized indicates that user is not authorized
	Unauthorized Type = 7

	// BadRequest indicates that the request could not be understood
	BadRequest Type = 8

	// Unauthenticated indicates that user is not authenticated due to absence of valid credentials
	Unauthenticated Type = 9
)

// Type is a type of the Error
type Type int32

// Error is an internal error
type Error struct {
	ErrorType Type
	Message   string
}

// Type returns the Type of the error
func (e *Error) Type() Type {
	return e.ErrorType
}

// Error is an error string
func (e *Error) Error() string {
	return e.Message
}

// Errorf returns Error(ErrorType, fmt.Sprintf(format, a...)).
func Errorf(errorType Type, format string, a ...interface{}) error {
	return &Error{
		ErrorType: errorType,
		Message:   fmt.Sprintf(format, a...),
	}
}

// FromError returns Error, true if the provided error is of type of Error. nil, false otherwise
func FromError(err error) (s *Error, ok bool) {
	if err == nil {
		return nil, true
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// NewUserNotFoundError creates a new Error with NotFound type for a missing user
func NewUserNotFoundError(userID string) error {
	return Errorf(NotFound, "user not found: %s", userID)
}

// NewSessionTokenNotFoundError creates a new Error with NotFound type for a missing session token
func NewSessionTokenNotFoundError() error {
	return Errorf(NotFound, "session token not found")
}

// NewSessionExpiredError creates a new Error with Unauthorized type for an expired session
func NewSessionExpiredError() error {
	return Errorf(Unauthorized, "session has expired, please log in once more")
}

// NewEmptyPathError creates a new Error with InvalidArgument type for an empty metadata path
func NewEmptyPathError() error {
	return Errorf(InvalidArgument, "path must contain at least one segment")
}

// NewGetUserFromStoreError creates a new Error with Internal type for an issue getting user from store
func NewGetUserFromStoreError() error {
	return Errorf(Internal, "issue getting user from store")
}
