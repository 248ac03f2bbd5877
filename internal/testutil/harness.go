// Package testutil provides the shared harness for integration tests that
// run whole scripts through the wired application.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/runr/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests;
// parallel lanes log concurrently.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of one harnessed run.
type HarnessResult struct {
	LogOutput string
	Err       error
}

// RunScript writes the given files into a temporary script directory, runs
// the identified script through a fully wired App, and returns the log
// output and error. File paths are relative to the script directory.
func RunScript(t *testing.T, files map[string]string, identifier string, params ...string) *HarnessResult {
	t.Helper()

	scriptsDir := filepath.Join(t.TempDir(), ".runr")
	require.NoError(t, os.MkdirAll(scriptsDir, 0o755))

	for name, content := range files {
		path := filepath.Join(scriptsDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{
		Identifier: identifier,
		Params:     params,
		ScriptsDir: scriptsDir,
		LogFormat:  "text",
		LogLevel:   "debug",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(logBuffer, cfg, nil)
	runErr := testApp.Run(context.Background())

	if os.Getenv("RUNR_TEST_LOGS") == "true" {
		t.Logf("--- Full log output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{LogOutput: logBuffer.String(), Err: runErr}
}
