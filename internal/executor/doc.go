// Package executor runs one concrete command: it applies the OS filter,
// renders the template, spawns the process, and drives the
// fallback-then-retry protocol. It knows nothing about step ordering or
// parallelism; that is the scheduler's job.
package executor
