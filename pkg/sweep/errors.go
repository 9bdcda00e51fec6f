package sweep

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned by Sweep when another run is already
// executing in this process. Runs are strictly sequential; callers that
// trigger sweeps on demand should surface this as a conflict rather
// than queueing.
var ErrRunInProgress = errors.New("sweep run already in progress")

// SetupError wraps a failure that occurred before the per-data-type
// loop started: database connectivity, catalog resolution. Setup
// failures abort the whole run, unlike per-data-type failures, which
// are contained.
type SetupError struct {
	// Stage names the setup step that failed ("ping", "resolve").
	Stage string

	// Cause is the underlying error.
	Cause error
}

// NewSetupError creates a SetupError for the given stage.
func NewSetupError(stage string, cause error) *SetupError {
	return &SetupError{Stage: stage, Cause: cause}
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("sweep setup failed during %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SetupError) Unwrap() error {
	return e.Cause
}
