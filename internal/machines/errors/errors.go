package errors

import "errors"

var (
	ErrNotFound = errors.New("machine not found")

	ErrNotAvailable = errors.New("machine is not available")
)
