package services

import "errors"

var (
	// ErrEmptyPool is returned when a draw is attempted with no eligible candidates left.
	ErrEmptyPool = errors.New("no names left in the pool")
	// ErrEmptyRoster is returned when drawing or grouping is attempted on an empty roster.
	ErrEmptyRoster = errors.New("the roster is empty, please add some names first")
	// ErrNamingUnavailable marks a failed or malformed naming collaborator call.
	// It never escapes the engines.
	ErrNamingUnavailable = errors.New("naming collaborator unavailable")
)
