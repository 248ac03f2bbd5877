package integration_tests

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/runr/internal/testutil"
)

// Test for: a nested sequence fans out as a parallel group and the run
// continues past the join barrier.
func TestCoreExecution_ParallelGroup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}

	files := map[string]string{
		"checks.yaml": `
name: checks
commands:
  - command: "echo before"
  - - command: "echo lane-one"
    - command: "echo lane-two"
    - command: "echo lane-three"
  - command: "echo after"
`,
	}

	result := testutil.RunScript(t, files, "checks")

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "Starting parallel group.")
	assert.Contains(t, result.LogOutput, "Parallel group complete.")
	for _, lane := range []string{"echo lane-one", "echo lane-two", "echo lane-three"} {
		assert.Contains(t, result.LogOutput, lane)
	}
	assert.Contains(t, result.LogOutput, "echo after", "the step after the barrier runs")
}

// Test for: a lane's capture surfaces to steps after the join barrier.
func TestCoreExecution_ParallelCaptureAfterJoin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}

	files := map[string]string{
		"gather.yaml": `
name: gather
commands:
  - - command: "echo from-lane"
      capture: "made"
    - command: "echo other"
  - command: "echo joined ${made}"
`,
	}

	result := testutil.RunScript(t, files, "gather")

	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "joined from-lane")
}
