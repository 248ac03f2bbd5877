package script

import (
	"fmt"
	"math"
)

// FromUntyped builds a Script from a generic decoded document tree
// (map[string]any / []any / scalars). It exists for serializations whose
// decoder cannot drive the Step union through custom unmarshalers; the TOML
// loader decodes into `any` and hands the tree here.
func FromUntyped(doc map[string]any) (*Script, error) {
	s := &Script{}
	var err error
	if s.Name, err = optString(doc, "name"); err != nil {
		return nil, err
	}
	if s.Description, err = optString(doc, "description"); err != nil {
		return nil, err
	}

	if raw, ok := doc["params"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("params must be a list of strings")
		}
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("params must be a list of strings")
			}
			s.Params = append(s.Params, name)
		}
	}

	if raw, ok := doc["secrets"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("secrets must be a list of tables")
		}
		for i, item := range list {
			table, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("secret %d: expected a table", i)
			}
			var sec Secret
			if sec.Name, err = optString(table, "name"); err != nil {
				return nil, fmt.Errorf("secret %d: %w", i, err)
			}
			if sec.EnvVar, err = optString(table, "env_var"); err != nil {
				return nil, fmt.Errorf("secret %d: %w", i, err)
			}
			s.Secrets = append(s.Secrets, sec)
		}
	}

	if raw, ok := doc["commands"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("commands must be a list")
		}
		for i, item := range list {
			step, err := stepFromUntyped(item)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			s.Commands = append(s.Commands, step)
		}
	}

	return s, nil
}

func stepFromUntyped(raw any) (Step, error) {
	switch v := raw.(type) {
	case map[string]any:
		cmd, err := commandFromUntyped(v)
		if err != nil {
			return Step{}, err
		}
		return Step{Single: cmd}, nil
	case []any:
		group := make([]Step, 0, len(v))
		for i, lane := range v {
			step, err := stepFromUntyped(lane)
			if err != nil {
				return Step{}, fmt.Errorf("lane %d: %w", i, err)
			}
			group = append(group, step)
		}
		return Step{Group: group}, nil
	default:
		return Step{}, fmt.Errorf("step must be a command table or a parallel list")
	}
}

func commandFromUntyped(table map[string]any) (*CommandSpec, error) {
	cmd := &CommandSpec{}
	var err error
	if cmd.Command, err = optString(table, "command"); err != nil {
		return nil, err
	}
	if cmd.Description, err = optString(table, "description"); err != nil {
		return nil, err
	}
	if cmd.Capture, err = optString(table, "capture"); err != nil {
		return nil, err
	}

	rawOpts, ok := table["options"]
	if !ok {
		return cmd, nil
	}
	opts, ok := rawOpts.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("options must be a table")
	}
	if cmd.Options.Interactive, err = optBool(opts, "interactive"); err != nil {
		return nil, err
	}
	if cmd.Options.ProceedOnFailure, err = optBool(opts, "proceed_on_failure"); err != nil {
		return nil, err
	}
	osName, err := optString(opts, "os")
	if err != nil {
		return nil, err
	}
	cmd.Options.OS = OperatingSystem(osName)
	if cmd.Options.DelayMs, err = optInt(opts, "delay_ms"); err != nil {
		return nil, err
	}
	if rawFallback, ok := opts["fallback"]; ok {
		list, ok := rawFallback.([]any)
		if !ok {
			return nil, fmt.Errorf("fallback must be a list of commands")
		}
		for i, item := range list {
			fbTable, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("fallback %d: expected a command table", i)
			}
			fb, err := commandFromUntyped(fbTable)
			if err != nil {
				return nil, fmt.Errorf("fallback %d: %w", i, err)
			}
			cmd.Options.Fallback = append(cmd.Options.Fallback, *fb)
		}
	}
	return cmd, nil
}

func optString(table map[string]any, key string) (string, error) {
	raw, ok := table[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

func optBool(table map[string]any, key string) (bool, error) {
	raw, ok := table[key]
	if !ok {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}

func optInt(table map[string]any, key string) (int64, error) {
	raw, ok := table[key]
	if !ok {
		return 0, nil
	}
	switch n := raw.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}
