package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidData is returned when stored data can't be deserialized.
	ErrInvalidData = errors.New("invalid data")

	// ErrClosed is returned when operating on a closed backend.
	ErrClosed = errors.New("storage is closed")
)
