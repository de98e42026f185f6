package compaction

import (
	"errors"
)

// Sentinel errors for pipeline configuration. The compaction transforms
// themselves are total functions over well-formed input and never fail.
var (
	// ErrInvalidConfig indicates invalid compaction configuration.
	ErrInvalidConfig = errors.New("invalid compaction configuration")

	// ErrNilPass is returned when registering a nil pass.
	ErrNilPass = errors.New("pass cannot be nil")

	// ErrInvalidPass is returned when a pass has an empty name or a
	// threshold outside [0,1].
	ErrInvalidPass = errors.New("invalid pass")
)
