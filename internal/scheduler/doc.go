// Package scheduler walks a script's ordered step sequence. Single commands
// run inline on the calling goroutine; parallel groups fan out to a bounded
// worker pool and join before the walk continues.
package scheduler
