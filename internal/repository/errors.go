package repository

import "errors"

var (
	// ErrValidation indicates missing or malformed caller input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates there is no record or photo for the given id.
	ErrNotFound = errors.New("not found")

	// ErrStorageCorrupt indicates inventory.json could not be parsed.
	ErrStorageCorrupt = errors.New("inventory storage is corrupt")

	// ErrStorageWrite indicates an I/O failure while persisting data.
	ErrStorageWrite = errors.New("inventory storage write failed")
)
