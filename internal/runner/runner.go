package runner

import (
	"context"
	"os"

	"github.com/vk/runr/internal/ctxlog"
	"github.com/vk/runr/internal/executor"
	"github.com/vk/runr/internal/scheduler"
	"github.com/vk/runr/internal/script"
	"github.com/vk/runr/internal/vars"
)

// ConfigLoader locates and decodes script definitions. Resolve maps a
// shortcut alias to its target script name (identity for plain names); Load
// reports ErrUnknownScript when nothing matches.
type ConfigLoader interface {
	Resolve(identifier string) (string, error)
	Load(ctx context.Context, name string) (*script.Script, error)
}

// EnvReader reads environment variables for secret binding. The runner only
// consults it at script entry; secrets are immutable afterwards.
type EnvReader interface {
	Lookup(name string) (string, bool)
}

// OSEnv is the process-environment EnvReader.
type OSEnv struct{}

func (OSEnv) Lookup(name string) (string, bool) { return os.LookupEnv(name) }

// Runner orchestrates script runs.
type Runner struct {
	// Loader locates and decodes scripts.
	Loader ConfigLoader
	// Env supplies secret values at entry.
	Env EnvReader
	// OS is the running platform, captured once.
	OS script.OperatingSystem
	// Spawner starts child processes.
	Spawner executor.ProcessSpawner
	// Workers is the parallel-group concurrency ceiling.
	Workers int
}

// Run executes the named script (or shortcut) with the given positional
// arguments. A nil return means the run completed; tolerated failures are
// reported as warnings, not errors.
func (r *Runner) Run(ctx context.Context, identifier string, args []string) error {
	return r.run(ctx, identifier, args, nil)
}

// run is the recursive core shared by top-level invocation and chaining.
func (r *Runner) run(ctx context.Context, identifier string, args []string, stack CallStack) error {
	logger := ctxlog.FromContext(ctx)

	name, err := r.Loader.Resolve(identifier)
	if err != nil {
		return err
	}
	if stack.Contains(name) {
		return &CycleError{Name: name, Stack: stack}
	}

	sc, err := r.Loader.Load(ctx, name)
	if err != nil {
		return err
	}

	store := vars.NewStore()
	if len(args) != len(sc.Params) {
		return &MissingParamError{Script: sc.Name, Want: len(sc.Params), Got: len(args)}
	}
	for i, paramName := range sc.Params {
		store.BindParam(paramName, args[i])
	}
	for _, secret := range sc.Secrets {
		value, ok := r.Env.Lookup(secret.EnvVar)
		if !ok {
			return &MissingSecretError{Name: secret.Name, EnvVar: secret.EnvVar}
		}
		store.BindSecret(secret.Name, value)
	}

	logger.Info("Running script.", "script", sc.Name)
	if sc.Description != "" {
		logger.Info(sc.Description, "script", sc.Name)
	}

	// The extended stack is captured by the chain closure, so a command that
	// re-enters the tool shares this run's cycle-detection state.
	next := stack.Push(name)
	exec := &executor.Executor{
		OS:      r.OS,
		Spawner: r.Spawner,
		Chain: func(ctx context.Context, chained string, chainedArgs []string) error {
			return r.run(ctx, chained, chainedArgs, next)
		},
	}

	result := scheduler.New(exec, r.Workers).Run(ctx, sc.Commands, store)
	if result.Tolerated > 0 {
		logger.Warn("Script finished with tolerated failures.",
			"script", sc.Name, "tolerated", result.Tolerated)
	}
	if result.Aborted {
		return &FatalStepError{Script: sc.Name, Step: result.AbortedAt, Err: result.Err}
	}

	logger.Info("Script finished.", "script", sc.Name)
	return nil
}
