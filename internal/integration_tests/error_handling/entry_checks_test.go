package integration_tests

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/runr/internal/runner"
	"github.com/vk/runr/internal/testutil"
)

// Test for: a declared secret whose environment variable is absent stops the
// run before any step executes.
func TestErrorHandling_MissingSecret(t *testing.T) {
	files := map[string]string{
		"deploy.yaml": `
name: deploy
secrets:
  - name: token
    env_var: RUNR_TEST_ABSENT_TOKEN
commands:
  - command: "echo should not run"
`,
	}

	result := testutil.RunScript(t, files, "deploy")

	var missing *runner.MissingSecretError
	require.ErrorAs(t, result.Err, &missing)
	assert.Equal(t, "RUNR_TEST_ABSENT_TOKEN", missing.EnvVar)
	assert.NotContains(t, result.LogOutput, "echo should not run")
}

// Test for: a declared secret binds from the environment and resolves.
func TestErrorHandling_SecretBinds(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	t.Setenv("RUNR_TEST_TOKEN", "tok-123")

	files := map[string]string{
		"deploy.yaml": `
name: deploy
secrets:
  - name: token
    env_var: RUNR_TEST_TOKEN
commands:
  - command: "echo using ${token}"
`,
	}

	result := testutil.RunScript(t, files, "deploy")

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "using tok-123")
}

// Test for: wrong positional argument count fails before anything runs.
func TestErrorHandling_ParamCountMismatch(t *testing.T) {
	files := map[string]string{
		"deploy.yaml": `
name: deploy
params:
  - environment
commands:
  - command: "echo ${environment}"
`,
	}

	result := testutil.RunScript(t, files, "deploy")

	var missing *runner.MissingParamError
	require.ErrorAs(t, result.Err, &missing)
	assert.Equal(t, 1, missing.Want)
}

// Test for: an unknown script or shortcut is reported as such.
func TestErrorHandling_UnknownScript(t *testing.T) {
	result := testutil.RunScript(t, map[string]string{}, "ghost")
	assert.ErrorIs(t, result.Err, runner.ErrUnknownScript)
}

// Test for: a script that chains back into itself is rejected.
func TestErrorHandling_ChainCycle(t *testing.T) {
	files := map[string]string{
		"a.yaml": "name: a\ncommands:\n  - command: \"runr b\"\n",
		"b.yaml": "name: b\ncommands:\n  - command: \"runr a\"\n",
	}

	result := testutil.RunScript(t, files, "a")

	var cycle *runner.CycleError
	require.ErrorAs(t, result.Err, &cycle)
	assert.Equal(t, "a", cycle.Name)
}
