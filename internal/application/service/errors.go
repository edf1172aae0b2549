package service

import "errors"

var (
	// ErrAuthorizationDenied is returned when the acting role is
	// insufficient for the requested operation. Recoverable only by a
	// higher-privileged actor.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrSignoffOutOfOrder is returned when the requested sign-off type is
	// not the chain's next required type
	ErrSignoffOutOfOrder = errors.New("sign-off out of order")

	// ErrSelfReview is returned when a user attempts a second sign-off on a
	// workpaper they already signed in another capacity
	ErrSelfReview = errors.New("user has already signed this workpaper")

	// ErrWorkpaperLocked is returned when a sign-off or content edit is
	// attempted on a partner-signed workpaper
	ErrWorkpaperLocked = errors.New("workpaper is locked")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
