package progress

import "errors"

var (
	// ErrConnection means the remote slot could not be reached.
	ErrConnection = errors.New("progress store unreachable")
	// ErrParse means the stored document is malformed. Load recovers from it.
	ErrParse = errors.New("malformed progress document")
	// ErrStorageWrite means a save or reset did not reach the remote slot.
	ErrStorageWrite = errors.New("progress store write failed")
	// ErrInvalidWeight is returned for body weights outside (0, MaxWeight].
	ErrInvalidWeight = errors.New("weight must be positive and at most 500 kg")
)
