package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the admin client packages
var (
	// Identity errors
	ErrUnauthenticated    = errors.New("unauthenticated: no current identity")
	ErrSessionEnded       = errors.New("session ended")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrIdentityMismatch   = errors.New("identity is not the current session")

	// Token errors
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrMissingToken     = errors.New("missing token")
	ErrRefreshTimeout   = errors.New("token refresh timed out")
	ErrMissingIDToken   = errors.New("token response has no id_token")
	ErrInsufficientRole = errors.New("insufficient role")

	// Report errors
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrUnknownColumns    = errors.New("report has no recognisable columns")

	// General errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternal      = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
