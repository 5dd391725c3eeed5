package errors

import (
	"errors"
	"fmt"
)

// Common error types for the OAuth2 session broker
var (
	// Session resolution errors
	ErrMissingOrInvalidSession = errors.New("missing or invalid session token")
	ErrUnknownSession          = errors.New("unknown or expired session")
	ErrMissingParams           = errors.New("missing params")
	ErrNotAuthorized           = errors.New("not authorized")

	// Authorization flow errors
	ErrMissingState        = errors.New("missing state")
	ErrUnknownState        = errors.New("unknown or expired state")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrAuthorizationDenied = errors.New("authorization denied by provider")

	// Token lifecycle errors
	ErrSessionExpired = errors.New("session expired")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
