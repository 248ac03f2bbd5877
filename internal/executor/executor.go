package executor

import (
	"context"
	"strings"
	"time"

	"github.com/vk/runr/internal/ctxlog"
	"github.com/vk/runr/internal/script"
	"github.com/vk/runr/internal/vars"
)

// chainCommand is the first token of a command line that dispatches a chained
// script invocation in-process instead of going through the shell.
const chainCommand = "runr"

// ChainFunc runs another named script as part of the current run, sharing the
// caller's call stack for cycle detection.
type ChainFunc func(ctx context.Context, identifier string, args []string) error

// Executor executes a single CommandSpec against a variable store.
type Executor struct {
	// OS is the running platform, captured once at script entry.
	OS script.OperatingSystem
	// Spawner starts resolved command lines as child processes.
	Spawner ProcessSpawner
	// Chain dispatches chained script invocations. Nil disables chaining;
	// such command lines then run through the shell like any other.
	Chain ChainFunc
	// Sleep implements the post-step delay. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// Execute runs one command through the full per-step protocol:
//
//  1. OS filter: a mismatch skips the step outright.
//  2. Resolve the template; unresolved variables count as command failures.
//  3. Spawn; non-zero exit or spawn failure is a command failure.
//  4. On failure with a fallback chain: run each fallback once, in order,
//     then retry the primary command exactly once. The retry's outcome, not
//     the first attempt's, decides the step.
//  5. On success, bind the capture (if any) and apply the post-step delay.
//
// The returned error is the failure cause for the Failed outcomes, nil
// otherwise.
func (e *Executor) Execute(ctx context.Context, spec *script.CommandSpec, store *vars.Store) (Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	if spec.Options.OS != "" && spec.Options.OS != e.OS {
		logger.Info("Skipping command, operating system does not match.",
			"command", spec.Command, "requires", spec.Options.OS, "current", e.OS)
		return Skipped, nil
	}

	err := e.attempt(ctx, spec, store)
	if err != nil && len(spec.Options.Fallback) > 0 {
		logger.Warn("Command failed, running fallback chain.",
			"command", spec.Command, "error", err, "fallback_count", len(spec.Options.Fallback))

		for i := range spec.Options.Fallback {
			fb := &spec.Options.Fallback[i]
			// Fallback commands do not get their own fallback or retry; a
			// failing entry is logged and the chain continues.
			if fbErr := e.attempt(ctx, fb, store); fbErr != nil {
				logger.Warn("Fallback command failed.", "command", fb.Command, "error", fbErr)
			}
		}

		logger.Info("Fallback chain complete, retrying original command.", "command", spec.Command)
		err = e.attempt(ctx, spec, store)
	}

	if err != nil {
		if spec.Options.ProceedOnFailure {
			logger.Warn("Command failed, continuing.", "command", spec.Command, "error", err)
			return FailedTolerated, err
		}
		logger.Error("Command failed.", "command", spec.Command, "error", err)
		return FailedFatal, err
	}

	if spec.Options.DelayMs > 0 {
		sleep := e.Sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		logger.Debug("Applying post-step delay.", "delay_ms", spec.Options.DelayMs)
		sleep(time.Duration(spec.Options.DelayMs) * time.Millisecond)
	}
	return Succeeded, nil
}

// attempt performs one resolve-and-run cycle. On success it binds the
// capture variable, if declared.
func (e *Executor) attempt(ctx context.Context, spec *script.CommandSpec, store *vars.Store) error {
	logger := ctxlog.FromContext(ctx)

	commandLine, err := vars.Resolve(spec.Command, store)
	if err != nil {
		return err
	}

	logger.Info("▶️ Executing command.", "command", commandLine)
	if spec.Description != "" {
		logger.Info("  "+spec.Description, "command", commandLine)
	}

	if name, args, ok := chainedInvocation(commandLine); ok && e.Chain != nil {
		return e.Chain(ctx, name, args)
	}

	if spec.Options.Interactive && spec.Capture != "" {
		logger.Warn("Capture is ignored for interactive commands.", "command", commandLine, "capture", spec.Capture)
	}

	result, err := e.Spawner.Spawn(ctx, commandLine, spec.Options.Interactive)
	if err != nil {
		return &SpawnError{Command: commandLine, Err: err}
	}
	if result.ExitCode != 0 {
		return &NonZeroExitError{Command: commandLine, Code: result.ExitCode}
	}

	if spec.Capture != "" && !spec.Options.Interactive {
		value := strings.TrimSpace(result.Stdout)
		store.SetCapture(spec.Capture, value)
		logger.Debug("Captured command output.", "variable", spec.Capture, "value", value)
	}
	return nil
}

// chainedInvocation reports whether a resolved command line re-enters the
// tool itself, and if so which script it names.
func chainedInvocation(commandLine string) (identifier string, args []string, ok bool) {
	fields := strings.Fields(commandLine)
	if len(fields) < 2 || fields[0] != chainCommand {
		return "", nil, false
	}
	return fields[1], fields[2:], true
}
