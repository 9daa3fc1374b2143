package services

import "github.com/pkg/errors"

// Error kinds returned by the data store. Callers test for them with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidPath    = errors.New("invalid path")
	ErrInvalidContent = errors.New("invalid content")
)
