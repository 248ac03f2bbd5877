// Package app wires the application together: logger, script loader, and
// runner, configured from the parsed command line.
package app
