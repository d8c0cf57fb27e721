package services

import "errors"

// Common errors
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrIDGeneration       = errors.New("failed to generate note id")
	ErrUpdateConflict     = errors.New("note kept changing during update")
)
