package script

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStepUnmarshalYAML(t *testing.T) {
	t.Run("mapping decodes as a single command", func(t *testing.T) {
		doc := `
command: "echo hello"
capture: "greeting"
options:
  os: "linux"
  delay_ms: 250
  proceed_on_failure: true
`
		var step Step
		require.NoError(t, yaml.Unmarshal([]byte(doc), &step))
		require.NotNil(t, step.Single)
		assert.False(t, step.IsParallel())
		assert.Equal(t, "echo hello", step.Single.Command)
		assert.Equal(t, "greeting", step.Single.Capture)
		assert.Equal(t, Linux, step.Single.Options.OS)
		assert.EqualValues(t, 250, step.Single.Options.DelayMs)
		assert.True(t, step.Single.Options.ProceedOnFailure)
	})

	t.Run("sequence decodes as a parallel group", func(t *testing.T) {
		doc := `
- command: "make lint"
- command: "make test"
- - command: "nested"
`
		var step Step
		require.NoError(t, yaml.Unmarshal([]byte(doc), &step))
		assert.True(t, step.IsParallel())
		require.Len(t, step.Group, 3)
		assert.Equal(t, "make lint", step.Group[0].Single.Command)
		assert.True(t, step.Group[2].IsParallel(), "groups may nest")
	})

	t.Run("scalar is rejected", func(t *testing.T) {
		var step Step
		err := yaml.Unmarshal([]byte(`"just a string"`), &step)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "step must be")
	})

	t.Run("fallback chain decodes", func(t *testing.T) {
		doc := `
command: "docker ps"
options:
  fallback:
    - command: "systemctl start docker"
    - command: "sleep 1"
`
		var step Step
		require.NoError(t, yaml.Unmarshal([]byte(doc), &step))
		require.NotNil(t, step.Single)
		require.Len(t, step.Single.Options.Fallback, 2)
		assert.Equal(t, "systemctl start docker", step.Single.Options.Fallback[0].Command)
	})
}

func TestStepUnmarshalJSON(t *testing.T) {
	t.Run("object decodes as a single command", func(t *testing.T) {
		doc := `{"command": "echo hi", "options": {"interactive": true}}`
		var step Step
		require.NoError(t, json.Unmarshal([]byte(doc), &step))
		require.NotNil(t, step.Single)
		assert.True(t, step.Single.Options.Interactive)
	})

	t.Run("array decodes as a parallel group", func(t *testing.T) {
		doc := `[{"command": "a"}, {"command": "b"}]`
		var step Step
		require.NoError(t, json.Unmarshal([]byte(doc), &step))
		assert.True(t, step.IsParallel())
		require.Len(t, step.Group, 2)
	})

	t.Run("scalar is rejected", func(t *testing.T) {
		var step Step
		require.Error(t, json.Unmarshal([]byte(`42`), &step))
	})
}

func TestScriptValidate(t *testing.T) {
	valid := func() *Script {
		return &Script{
			Name: "demo",
			Commands: []Step{
				{Single: &CommandSpec{Command: "echo ok"}},
			},
		}
	}

	t.Run("valid script passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		s := valid()
		s.Name = ""
		assert.ErrorContains(t, s.Validate(), "missing a name")
	})

	t.Run("empty command template", func(t *testing.T) {
		s := valid()
		s.Commands[0].Single.Command = ""
		assert.ErrorContains(t, s.Validate(), "command template is empty")
	})

	t.Run("unknown os", func(t *testing.T) {
		s := valid()
		s.Commands[0].Single.Options.OS = "beos"
		assert.ErrorContains(t, s.Validate(), `unknown os "beos"`)
	})

	t.Run("negative delay", func(t *testing.T) {
		s := valid()
		s.Commands[0].Single.Options.DelayMs = -1
		assert.ErrorContains(t, s.Validate(), "delay_ms")
	})

	t.Run("nested fallback", func(t *testing.T) {
		s := valid()
		s.Commands[0].Single.Options.Fallback = []CommandSpec{{
			Command: "restart",
			Options: Options{Fallback: []CommandSpec{{Command: "reboot"}}},
		}}
		assert.ErrorContains(t, s.Validate(), "cannot declare their own fallback")
	})

	t.Run("incomplete secret", func(t *testing.T) {
		s := valid()
		s.Secrets = []Secret{{Name: "token"}}
		assert.ErrorContains(t, s.Validate(), "env_var")
	})
}
