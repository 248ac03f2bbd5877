// Package loader locates script definitions on disk and decodes them into
// the script model. A script is found by explicit file path or by name in
// the configured script directories (the working directory's .runr, then the
// home directory's), trying each supported serialization's extension.
// Shortcut aliases come from a .shortcuts.yaml file in the same directories.
package loader
