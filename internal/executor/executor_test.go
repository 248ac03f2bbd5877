package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/runr/internal/script"
	"github.com/vk/runr/internal/vars"
)

// fakeSpawner replays scripted results in call order and records every
// spawned command line.
type fakeSpawner struct {
	results []fakeResult
	calls   []string
}

type fakeResult struct {
	exitCode int
	stdout   string
	err      error
}

func (f *fakeSpawner) Spawn(_ context.Context, commandLine string, _ bool) (SpawnResult, error) {
	f.calls = append(f.calls, commandLine)
	if len(f.results) == 0 {
		return SpawnResult{ExitCode: 0}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	if r.err != nil {
		return SpawnResult{}, r.err
	}
	return SpawnResult{ExitCode: r.exitCode, Stdout: r.stdout}, nil
}

func newExecutor(spawner ProcessSpawner) *Executor {
	return &Executor{
		OS:      script.Linux,
		Spawner: spawner,
		Sleep:   func(time.Duration) {},
	}
}

func TestExecuteSuccess(t *testing.T) {
	spawner := &fakeSpawner{}
	exec := newExecutor(spawner)
	store := vars.NewStore()
	store.BindParam("name", "world")

	outcome, _ := exec.Execute(context.Background(), &script.CommandSpec{Command: "echo ${name}"}, store)
	assert.Equal(t, Succeeded, outcome)
	require.Equal(t, []string{"echo world"}, spawner.calls)
}

func TestExecuteOSSkip(t *testing.T) {
	spawner := &fakeSpawner{}
	exec := newExecutor(spawner)
	slept := false
	exec.Sleep = func(time.Duration) { slept = true }

	spec := &script.CommandSpec{
		Command: "dir",
		Capture: "listing",
		Options: script.Options{OS: script.Windows, DelayMs: 100},
	}
	store := vars.NewStore()

	outcome, _ := exec.Execute(context.Background(), spec, store)
	assert.Equal(t, Skipped, outcome)
	assert.Empty(t, spawner.calls, "a skipped step never spawns")
	assert.False(t, slept, "a skipped step never delays")
	_, ok := store.Lookup("listing")
	assert.False(t, ok, "a skipped step never captures")
}

func TestExecuteCaptureTrimsOutput(t *testing.T) {
	spawner := &fakeSpawner{results: []fakeResult{{stdout: "  abc123\n"}}}
	exec := newExecutor(spawner)
	store := vars.NewStore()

	outcome, _ := exec.Execute(context.Background(), &script.CommandSpec{
		Command: "git rev-parse HEAD",
		Capture: "sha",
	}, store)
	assert.Equal(t, Succeeded, outcome)
	v, ok := store.Lookup("sha")
	require.True(t, ok)
	assert.Equal(t, "abc123", v)
}

func TestExecuteInteractiveIgnoresCapture(t *testing.T) {
	spawner := &fakeSpawner{results: []fakeResult{{stdout: "should not bind"}}}
	exec := newExecutor(spawner)
	store := vars.NewStore()

	outcome, _ := exec.Execute(context.Background(), &script.CommandSpec{
		Command: "ssh prod",
		Capture: "session",
		Options: script.Options{Interactive: true},
	}, store)
	assert.Equal(t, Succeeded, outcome)
	_, ok := store.Lookup("session")
	assert.False(t, ok)
}

func TestExecuteFallbackThenRetry(t *testing.T) {
	t.Run("retry succeeds after fallback chain", func(t *testing.T) {
		spawner := &fakeSpawner{results: []fakeResult{
			{exitCode: 1}, // primary
			{exitCode: 0}, // fallback 1
			{exitCode: 1}, // fallback 2 fails, chain continues
			{exitCode: 0}, // retry
		}}
		exec := newExecutor(spawner)

		spec := &script.CommandSpec{
			Command: "docker ps",
			Options: script.Options{Fallback: []script.CommandSpec{
				{Command: "systemctl start docker"},
				{Command: "sleep 1"},
			}},
		}
		outcome, _ := exec.Execute(context.Background(), spec, vars.NewStore())
		assert.Equal(t, Succeeded, outcome)
		assert.Equal(t, []string{
			"docker ps",
			"systemctl start docker",
			"sleep 1",
			"docker ps",
		}, spawner.calls, "fallbacks run in order, then the primary retries exactly once")
	})

	t.Run("retry fails and decides the step", func(t *testing.T) {
		spawner := &fakeSpawner{results: []fakeResult{
			{exitCode: 1}, // primary
			{exitCode: 0}, // fallback
			{exitCode: 7}, // retry
		}}
		exec := newExecutor(spawner)

		spec := &script.CommandSpec{
			Command: "flaky",
			Options: script.Options{Fallback: []script.CommandSpec{{Command: "fix"}}},
		}
		outcome, _ := exec.Execute(context.Background(), spec, vars.NewStore())
		assert.Equal(t, FailedFatal, outcome)
		assert.Len(t, spawner.calls, 3, "no second retry")
	})

	t.Run("no fallback means no retry", func(t *testing.T) {
		spawner := &fakeSpawner{results: []fakeResult{{exitCode: 1}}}
		exec := newExecutor(spawner)

		outcome, _ := exec.Execute(context.Background(), &script.CommandSpec{Command: "false"}, vars.NewStore())
		assert.Equal(t, FailedFatal, outcome)
		assert.Len(t, spawner.calls, 1)
	})
}

func TestExecuteToleratedFailure(t *testing.T) {
	spawner := &fakeSpawner{results: []fakeResult{{exitCode: 1}}}
	exec := newExecutor(spawner)

	spec := &script.CommandSpec{
		Command: "rm maybe-missing",
		Options: script.Options{ProceedOnFailure: true},
	}
	outcome, err := exec.Execute(context.Background(), spec, vars.NewStore())
	assert.Equal(t, FailedTolerated, outcome)
	var exitErr *NonZeroExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
}

func TestExecuteUnresolvedVariable(t *testing.T) {
	t.Run("fatal without fallback", func(t *testing.T) {
		spawner := &fakeSpawner{}
		exec := newExecutor(spawner)

		outcome, err := exec.Execute(context.Background(), &script.CommandSpec{Command: "echo ${missing}"}, vars.NewStore())
		assert.Equal(t, FailedFatal, outcome)
		var unresolved *vars.UnresolvedVariableError
		assert.ErrorAs(t, err, &unresolved)
		assert.Empty(t, spawner.calls, "nothing spawns when resolution fails")
	})

	t.Run("enters the fallback chain", func(t *testing.T) {
		spawner := &fakeSpawner{results: []fakeResult{{stdout: "value\n"}}}
		exec := newExecutor(spawner)
		store := vars.NewStore()

		spec := &script.CommandSpec{
			Command: "echo ${sha}",
			Options: script.Options{Fallback: []script.CommandSpec{
				{Command: "git rev-parse HEAD", Capture: "sha"},
			}},
		}
		outcome, _ := exec.Execute(context.Background(), spec, store)
		assert.Equal(t, Succeeded, outcome)
		// The fallback captured the missing variable, so the retry resolves.
		assert.Equal(t, []string{"git rev-parse HEAD", "echo value"}, spawner.calls)
	})
}

func TestExecuteSpawnFailure(t *testing.T) {
	spawner := &fakeSpawner{results: []fakeResult{{err: errors.New("sh: not found")}}}
	exec := newExecutor(spawner)

	outcome, err := exec.Execute(context.Background(), &script.CommandSpec{Command: "echo hi"}, vars.NewStore())
	assert.Equal(t, FailedFatal, outcome)
	var spawnErr *SpawnError
	assert.ErrorAs(t, err, &spawnErr)
}

func TestExecuteDelay(t *testing.T) {
	t.Run("applied after success", func(t *testing.T) {
		spawner := &fakeSpawner{}
		exec := newExecutor(spawner)
		var slept time.Duration
		exec.Sleep = func(d time.Duration) { slept = d }

		spec := &script.CommandSpec{Command: "echo hi", Options: script.Options{DelayMs: 250}}
		outcome, _ := exec.Execute(context.Background(), spec, vars.NewStore())
		assert.Equal(t, Succeeded, outcome)
		assert.Equal(t, 250*time.Millisecond, slept)
	})

	t.Run("not applied after failure", func(t *testing.T) {
		spawner := &fakeSpawner{results: []fakeResult{{exitCode: 1}}}
		exec := newExecutor(spawner)
		slept := false
		exec.Sleep = func(time.Duration) { slept = true }

		spec := &script.CommandSpec{
			Command: "false",
			Options: script.Options{DelayMs: 250, ProceedOnFailure: true},
		}
		outcome, _ := exec.Execute(context.Background(), spec, vars.NewStore())
		assert.Equal(t, FailedTolerated, outcome)
		assert.False(t, slept)
	})
}

func TestExecuteChainDispatch(t *testing.T) {
	t.Run("runr prefix dispatches in process", func(t *testing.T) {
		spawner := &fakeSpawner{}
		exec := newExecutor(spawner)
		var gotName string
		var gotArgs []string
		exec.Chain = func(_ context.Context, name string, args []string) error {
			gotName = name
			gotArgs = args
			return nil
		}
		store := vars.NewStore()
		store.BindParam("env", "prod")

		outcome, _ := exec.Execute(context.Background(), &script.CommandSpec{Command: "runr deploy ${env}"}, store)
		assert.Equal(t, Succeeded, outcome)
		assert.Equal(t, "deploy", gotName)
		assert.Equal(t, []string{"prod"}, gotArgs)
		assert.Empty(t, spawner.calls, "chained invocations never reach the shell")
	})

	t.Run("chain failure is a command failure", func(t *testing.T) {
		exec := newExecutor(&fakeSpawner{})
		exec.Chain = func(context.Context, string, []string) error {
			return errors.New("inner script failed")
		}

		outcome, _ := exec.Execute(context.Background(), &script.CommandSpec{Command: "runr deploy"}, vars.NewStore())
		assert.Equal(t, FailedFatal, outcome)
	})

	t.Run("bare runr token goes to the shell", func(t *testing.T) {
		spawner := &fakeSpawner{}
		exec := newExecutor(spawner)
		exec.Chain = func(context.Context, string, []string) error {
			t.Fatal("chain must not fire without a script name")
			return nil
		}

		outcome, _ := exec.Execute(context.Background(), &script.CommandSpec{Command: "runr"}, vars.NewStore())
		assert.Equal(t, Succeeded, outcome)
		assert.Equal(t, []string{"runr"}, spawner.calls)
	})
}

func TestChainedInvocation(t *testing.T) {
	name, args, ok := chainedInvocation("runr build fast")
	require.True(t, ok)
	assert.Equal(t, "build", name)
	assert.Equal(t, []string{"fast"}, args)

	_, _, ok = chainedInvocation("echo runr build")
	assert.False(t, ok, "only the first token counts")
}
