package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrNotActive = errors.New("booking is not active")
)
