package executor

// Outcome is the terminal state of a single step.
type Outcome int

const (
	// Skipped means the OS filter did not match; no process was spawned.
	Skipped Outcome = iota
	// Succeeded means the command exited zero, on the first attempt or the retry.
	Succeeded
	// FailedFatal means the command failed and proceed_on_failure is unset.
	FailedFatal
	// FailedTolerated means the command failed but the script may continue.
	FailedTolerated
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Succeeded:
		return "succeeded"
	case FailedFatal:
		return "failed"
	case FailedTolerated:
		return "failed (tolerated)"
	default:
		return "unknown"
	}
}
