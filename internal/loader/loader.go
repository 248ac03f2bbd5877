package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/vk/runr/internal/ctxlog"
	"github.com/vk/runr/internal/fsutil"
	"github.com/vk/runr/internal/runner"
	"github.com/vk/runr/internal/script"
	"gopkg.in/yaml.v3"
)

// ScriptDirName is the per-project (and per-home) script directory.
const ScriptDirName = ".runr"

// ShortcutsFileName is the alias map file looked up next to the scripts.
const ShortcutsFileName = ".shortcuts.yaml"

// SupportedExtensions lists the script serializations, in lookup order.
var SupportedExtensions = []string{".yaml", ".yml", ".json", ".toml", ".hcl"}

// ParseError wraps a decode failure with the file it came from. Parse
// failures are fatal before any step executes.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FSLoader implements runner.ConfigLoader over the file system.
type FSLoader struct {
	dirs []string
}

// New creates a loader searching the given directories in order. With no
// arguments it searches the working directory's script dir, then the home
// directory's.
func New(dirs ...string) *FSLoader {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	return &FSLoader{dirs: dirs}
}

// DefaultDirs is the standard search order: ./.runr, then $HOME/.runr.
func DefaultDirs() []string {
	dirs := []string{ScriptDirName}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ScriptDirName))
	}
	return dirs
}

// Resolve maps a shortcut alias to its target script name. Explicit file
// paths and plain script names pass through unchanged.
func (l *FSLoader) Resolve(identifier string) (string, error) {
	if fsutil.FileExists(identifier) {
		return identifier, nil
	}
	for _, dir := range l.dirs {
		shortcuts, err := l.loadShortcuts(dir)
		if err != nil {
			return "", err
		}
		if target, ok := shortcuts[identifier]; ok {
			return target, nil
		}
	}
	return identifier, nil
}

// Load finds and decodes the named script. The name may be an explicit file
// path or a bare script name resolved against the search directories.
func (l *FSLoader) Load(ctx context.Context, name string) (*script.Script, error) {
	logger := ctxlog.FromContext(ctx)

	path, ok := l.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: no script or shortcut found for %q", runner.ErrUnknownScript, name)
	}
	logger.Debug("Loading script.", "name", name, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	sc, err := decode(path, data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := sc.Validate(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	logger.Debug("Script loaded.", "script", sc.Name, "steps", len(sc.Commands))
	return sc, nil
}

func (l *FSLoader) find(name string) (string, bool) {
	if fsutil.FileExists(name) {
		return name, true
	}
	for _, dir := range l.dirs {
		if path, ok := fsutil.FindWithExtension(dir, name, SupportedExtensions); ok {
			return path, true
		}
	}
	return "", false
}

// shortcutsFile mirrors the on-disk shape of .shortcuts.yaml.
type shortcutsFile struct {
	Shortcuts map[string]string `yaml:"shortcuts"`
}

func (l *FSLoader) loadShortcuts(dir string) (map[string]string, error) {
	path := filepath.Join(dir, ShortcutsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	var file shortcutsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return file.Shortcuts, nil
}

// decode dispatches on the file extension. The three data serializations
// share the script model's union handling; HCL has its own block-based
// translation.
func decode(path string, data []byte) (*script.Script, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var sc script.Script
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return nil, err
		}
		return &sc, nil
	case ".json":
		var sc script.Script
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, err
		}
		return &sc, nil
	case ".toml":
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return script.FromUntyped(doc)
	case ".hcl":
		return decodeHCL(path, data)
	default:
		return nil, fmt.Errorf("unsupported script extension %q", filepath.Ext(path))
	}
}
