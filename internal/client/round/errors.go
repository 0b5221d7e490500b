package round

import "errors"

// Ошибки жизненного цикла обхода.
// Все они синхронные: недопустимый переход или невалидный ввод никогда
// не попадает в офлайн-очередь.
var (
	// ErrRoundAlreadyActive guard already has a round in progress
	ErrRoundAlreadyActive = errors.New("guard already has an active round")

	// ErrRoundNotInProgress operation requires an in-progress round
	ErrRoundNotInProgress = errors.New("round is not in progress")

	// ErrIncompleteRoute complete() requires every checkpoint verified
	ErrIncompleteRoute = errors.New("route has unverified checkpoints")

	// ErrCheckpointNotInRoute checkpoint does not belong to the round's route
	ErrCheckpointNotInRoute = errors.New("checkpoint does not belong to route")

	// ErrCodeMismatch scanned code does not match the checkpoint's expected code
	ErrCodeMismatch = errors.New("qr code does not match expected code")

	// ErrMissingEvidence verification method requires evidence that was not provided
	ErrMissingEvidence = errors.New("verification evidence is missing")

	// ErrOccurrenceRequired emergency finish requires a linked occurrence
	ErrOccurrenceRequired = errors.New("emergency finish requires an occurrence with description")
)
