package service

import "errors"

// detailer is implemented by backend errors carrying a user-facing message.
type detailer interface {
	Detail() string
}

// MessageOr returns the backend-provided message carried by err, or fallback
// when there is none.
func MessageOr(err error, fallback string) string {
	var d detailer
	if errors.As(err, &d) && d.Detail() != "" {
		return d.Detail()
	}
	return fallback
}
