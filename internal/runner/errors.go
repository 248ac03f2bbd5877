package runner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScript is reported by loaders when no script matches the
// resolved name. Runner callers match it with errors.Is.
var ErrUnknownScript = errors.New("unknown script")

// MissingParamError reports a positional-argument count that does not match
// the script's declared params. Nothing runs when this fires.
type MissingParamError struct {
	Script string
	Want   int
	Got    int
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("script %q expects %d parameter(s), got %d", e.Script, e.Want, e.Got)
}

// MissingSecretError reports a declared secret whose environment variable is
// absent. Nothing runs when this fires.
type MissingSecretError struct {
	Name   string
	EnvVar string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("secret %q not found in environment variable %q", e.Name, e.EnvVar)
}

// CycleError reports a script that would re-enter itself, directly or
// through a chain of other scripts.
type CycleError struct {
	Name  string
	Stack CallStack
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: script %q is already running (call stack: %s)",
		e.Name, strings.Join(append([]string(e.Stack), e.Name), " -> "))
}

// FatalStepError reports the step at which a run aborted, wrapping the
// failure cause.
type FatalStepError struct {
	Script string
	Step   int
	Err    error
}

func (e *FatalStepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script %q aborted at step %d: %v", e.Script, e.Step, e.Err)
	}
	return fmt.Sprintf("script %q aborted at step %d", e.Script, e.Step)
}

func (e *FatalStepError) Unwrap() error { return e.Err }
