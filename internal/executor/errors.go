package executor

import "fmt"

// SpawnError reports a command whose process could not be started at all.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// NonZeroExitError reports a command that ran but exited with a non-zero
// status.
type NonZeroExitError struct {
	Command string
	Code    int
}

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Command, e.Code)
}
