package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"
)

// SpawnResult is what a spawner reports for a process that actually ran.
type SpawnResult struct {
	ExitCode int
	Stdout   string
}

// ProcessSpawner starts a resolved command line as a child process. The
// returned error is reserved for spawn failures; a process that ran and
// exited non-zero is reported through ExitCode.
type ProcessSpawner interface {
	Spawn(ctx context.Context, commandLine string, interactive bool) (SpawnResult, error)
}

// ShellSpawner runs command lines through the platform shell: `sh -c` on
// unix, `cmd /C` on windows. Interactive commands inherit the configured
// stdio streams; otherwise stdout and stderr are buffered and the stdout
// text is returned for capture.
type ShellSpawner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s *ShellSpawner) Spawn(ctx context.Context, commandLine string, interactive bool) (SpawnResult, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", commandLine)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", commandLine)
	}

	var stdout bytes.Buffer
	if interactive {
		cmd.Stdin = s.Stdin
		cmd.Stdout = s.Stdout
		cmd.Stderr = s.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &bytes.Buffer{}
	}

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return SpawnResult{ExitCode: exitErr.ExitCode(), Stdout: stdout.String()}, nil
		}
		return SpawnResult{}, err
	}
	return SpawnResult{ExitCode: 0, Stdout: stdout.String()}, nil
}
