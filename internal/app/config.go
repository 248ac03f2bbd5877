package app

import "errors"

// Config holds everything an App instance needs to run one script.
type Config struct {
	// Identifier is the script name, shortcut alias, or explicit file path.
	Identifier string
	// Params are the positional arguments bound to the script's params.
	Params []string
	// ScriptsDir overrides the default .runr search chain when non-empty.
	ScriptsDir string

	LogFormat string
	LogLevel  string
	// Workers is the concurrency ceiling for parallel groups.
	Workers int
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Identifier == "" {
		return nil, errors.New("a script name, shortcut, or path is required")
	}
	return &cfg, nil
}
