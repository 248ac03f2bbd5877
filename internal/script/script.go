// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Script structure, the root of a loaded script
// document.
//
// A Script is decoded once by a loader and then owned exclusively by the
// runner invocation that loaded it. Nothing mutates it afterwards: runtime
// state (captured outputs, bound parameters) lives in the variable store,
// never in the document model. Two nested invocations of the same definition
// therefore never share mutable state.
package script

import "fmt"

// Script is the format-agnostic representation of a script document.
type Script struct {
	// Name is the descriptive name of the script.
	Name string
	// Description optionally explains what the script does.
	Description string
	// Params lists the expected positional parameter names, in order.
	Params []string
	// Secrets lists variables bound from environment variables at entry.
	Secrets []Secret
	// Commands is the ordered sequence of steps to execute.
	Commands []Step
}

// Secret binds a placeholder name to the environment variable holding its
// value.
type Secret struct {
	Name   string `yaml:"name" json:"name" toml:"name"`
	EnvVar string `yaml:"env_var" json:"env_var" toml:"env_var"`
}

// Validate checks the structural invariants of a loaded script. It is called
// by every loader after decoding, so the engine can assume a well-formed
// model.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("script is missing a name")
	}
	for _, sec := range s.Secrets {
		if sec.Name == "" || sec.EnvVar == "" {
			return fmt.Errorf("script %q: secret entries need both name and env_var", s.Name)
		}
	}
	for i := range s.Commands {
		if err := s.Commands[i].validate(); err != nil {
			return fmt.Errorf("script %q: step %d: %w", s.Name, i, err)
		}
	}
	return nil
}
