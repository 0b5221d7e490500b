package storage

import "errors"

// Common client storage errors
var (
	// ErrRouteNotFound indicates that route snapshot was not found
	ErrRouteNotFound = errors.New("route not found")

	// ErrRoundNotFound indicates that round was not found
	ErrRoundNotFound = errors.New("round not found")

	// ErrNoActiveRound indicates that guard has no round in progress
	ErrNoActiveRound = errors.New("no active round")

	// ErrVerificationNotFound indicates that checkpoint verification was not found
	ErrVerificationNotFound = errors.New("checkpoint verification not found")

	// ErrActionNotFound indicates that offline action was not found in the queue
	ErrActionNotFound = errors.New("offline action not found")
)
