package storage

import "errors"

// Common storage errors
var (
	// ErrRoundNotFound indicates that round was not found in storage
	ErrRoundNotFound = errors.New("round not found")

	// ErrActiveRoundExists indicates that guard already has an in-progress round.
	// Это авторитетная проверка инварианта: клиентская — лишь оптимизация.
	ErrActiveRoundExists = errors.New("guard already has an active round")

	// ErrOccurrenceNotFound indicates that occurrence was not found
	ErrOccurrenceNotFound = errors.New("occurrence not found")
)
