package domain

import "errors"

var (
	// ErrAuthRejected marks a backend call whose credentials were refused on a
	// non-public endpoint. It forces a logout.
	ErrAuthRejected = errors.New("authentication rejected")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")

	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrInvalidAmount      = errors.New("invalid amount")

	ErrInvalidTransition   = errors.New("invalid checkout transition")
	ErrWidgetNotReady      = errors.New("checkout widget not loaded")
	ErrVerificationPending = errors.New("payment verification already in progress")
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrStaleAttempt        = errors.New("checkout attempt superseded")
)

// ErrInvalidStatus is returned for a registration status an actor may not set.
var ErrInvalidStatus = errors.New("invalid registration status")
