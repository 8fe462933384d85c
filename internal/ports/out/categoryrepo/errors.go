package categoryrepo

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("membership category not found")

	// ErrAlreadyExists indicates a record already exists with the provided ID.
	ErrAlreadyExists = errors.New("membership category already exists")
)
