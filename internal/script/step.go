// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Step union and the CommandSpec it wraps.
//
// The document schema overloads a list entry: it is either a command object
// or a nested list denoting a parallel group. The union is resolved exactly
// once, at decode time, into a Step with exactly one of its two fields
// populated. Everything downstream switches on IsParallel and nothing else.
package script

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Step is either a single command or a parallel group of nested steps.
// Exactly one of Single and Group is set.
type Step struct {
	Single *CommandSpec
	Group  []Step
}

// IsParallel reports whether the step is a parallel group.
func (s Step) IsParallel() bool { return s.Single == nil }

// CommandSpec describes one shell invocation and its execution policy.
type CommandSpec struct {
	Command     string  `yaml:"command" json:"command" toml:"command"`
	Description string  `yaml:"description" json:"description" toml:"description"`
	Capture     string  `yaml:"capture" json:"capture" toml:"capture"`
	Options     Options `yaml:"options" json:"options" toml:"options"`
}

// Options controls how a single command executes.
type Options struct {
	// Interactive attaches the invoking terminal instead of capturing output.
	Interactive bool `yaml:"interactive" json:"interactive" toml:"interactive"`
	// OS restricts the command to one platform; elsewhere it is skipped.
	OS OperatingSystem `yaml:"os" json:"os" toml:"os"`
	// ProceedOnFailure keeps the script going after a terminal failure.
	ProceedOnFailure bool `yaml:"proceed_on_failure" json:"proceed_on_failure" toml:"proceed_on_failure"`
	// DelayMs pauses after a successful command, before the next step.
	DelayMs int64 `yaml:"delay_ms" json:"delay_ms" toml:"delay_ms"`
	// Fallback commands run once, in order, after the primary command fails;
	// the primary is then retried exactly once.
	Fallback []CommandSpec `yaml:"fallback" json:"fallback" toml:"fallback"`
}

func (s Step) validate() error {
	if s.Single != nil && s.Group != nil {
		return fmt.Errorf("step cannot be both a command and a parallel group")
	}
	if s.Single == nil && s.Group == nil {
		return fmt.Errorf("step is empty")
	}
	if s.Single != nil {
		return s.Single.validate()
	}
	for i := range s.Group {
		if err := s.Group[i].validate(); err != nil {
			return fmt.Errorf("lane %d: %w", i, err)
		}
	}
	return nil
}

func (c *CommandSpec) validate() error {
	if c.Command == "" {
		return fmt.Errorf("command template is empty")
	}
	if c.Options.OS != "" && !c.Options.OS.Valid() {
		return fmt.Errorf("unknown os %q", c.Options.OS)
	}
	if c.Options.DelayMs < 0 {
		return fmt.Errorf("delay_ms must not be negative")
	}
	for i := range c.Options.Fallback {
		fb := &c.Options.Fallback[i]
		if fb.Command == "" {
			return fmt.Errorf("fallback %d: command template is empty", i)
		}
		// Fallback commands run once with no policy of their own; a nested
		// chain would never execute, so it is rejected up front.
		if len(fb.Options.Fallback) > 0 {
			return fmt.Errorf("fallback %d: fallback commands cannot declare their own fallback", i)
		}
	}
	return nil
}

// UnmarshalYAML resolves the command-or-group union for YAML documents.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var cmd CommandSpec
		if err := node.Decode(&cmd); err != nil {
			return err
		}
		s.Single = &cmd
		return nil
	case yaml.SequenceNode:
		var group []Step
		if err := node.Decode(&group); err != nil {
			return err
		}
		s.Group = group
		return nil
	default:
		return fmt.Errorf("line %d: step must be a command mapping or a parallel sequence", node.Line)
	}
}

// UnmarshalJSON resolves the command-or-group union for JSON documents.
func (s *Step) UnmarshalJSON(data []byte) error {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.(type) {
	case map[string]any:
		var cmd CommandSpec
		if err := json.Unmarshal(data, &cmd); err != nil {
			return err
		}
		s.Single = &cmd
		return nil
	case []any:
		var group []Step
		if err := json.Unmarshal(data, &group); err != nil {
			return err
		}
		s.Group = group
		return nil
	default:
		return fmt.Errorf("step must be a command object or a parallel array")
	}
}
