// Package script defines the format-agnostic model of a script document:
// the script header, its ordered steps, and the per-command execution
// options. Loaders for the individual serializations translate into this
// model at the parsing boundary, so the rest of the engine never inspects
// raw decoded values by shape.
package script
