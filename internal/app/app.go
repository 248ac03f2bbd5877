package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/vk/runr/internal/executor"
	"github.com/vk/runr/internal/loader"
	"github.com/vk/runr/internal/runner"
	"github.com/vk/runr/internal/script"
)

// App encapsulates one configured invocation of the tool.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	runner *runner.Runner
	config *Config
}

// NewApp constructs a fully wired App. Passing a non-nil loader overrides
// the file-system default; tests use this to inject fixtures.
func NewApp(outW io.Writer, cfg *Config, ldr runner.ConfigLoader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("run_id", uuid.NewString())
	logger.Debug("Logger configured.")

	if ldr == nil {
		if cfg.ScriptsDir != "" {
			ldr = loader.New(cfg.ScriptsDir)
		} else {
			ldr = loader.New()
		}
	}

	// The platform identity and the environment reader are fixed here, once,
	// so a run's behavior is a function of its inputs.
	r := &runner.Runner{
		Loader: ldr,
		Env:    runner.OSEnv{},
		OS:     script.CurrentOS(),
		Spawner: &executor.ShellSpawner{
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		},
		Workers: cfg.Workers,
	}

	return &App{outW: outW, logger: logger, runner: r, config: cfg}
}

// Runner exposes the wired runner, primarily for tests.
func (a *App) Runner() *runner.Runner { return a.runner }
