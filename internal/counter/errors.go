package counter

import "errors"

// Validation errors rejected before any state mutation; fully
// recoverable - the caller fixes the input and retries.
var (
	// ErrInvalidTarget indicates requiredRepetitions <= 0.
	ErrInvalidTarget = errors.New("required repetitions must be a positive number")

	// ErrEmptyMantra indicates the counted text is empty.
	ErrEmptyMantra = errors.New("mantra text cannot be empty")

	// ErrNoActiveSession indicates RecordEvent or End was called
	// outside the Active state.
	ErrNoActiveSession = errors.New("no active session")

	// ErrInvalidChannel indicates an unknown event channel.
	ErrInvalidChannel = errors.New("invalid event channel")
)
