// Package runner is the top-level orchestrator of a script run: it resolves
// the identifier (shortcut or name) to a loaded script, binds parameters and
// secrets into the variable store, hands the step sequence to the scheduler,
// and supports recursive chaining into other scripts with cycle detection.
package runner
