package proc

// ExitReason classifies how a child process ended.
type ExitReason uint8

const (
	// ExitUndefined means the exit reason is not recorded yet.
	ExitUndefined ExitReason = iota
	// ExitNormal means the process exited on its own; the exit code is valid.
	ExitNormal
	// ExitAborted means the process was cancelled through an abort flag.
	ExitAborted
	// ExitTimeout means the process exceeded the overall wall-clock budget.
	ExitTimeout
	// ExitTimeoutInactive means the process produced no output within the
	// inactivity budget.
	ExitTimeoutInactive
)

// String returns the stable human-readable reason name used in diagnostics.
func (r ExitReason) String() string {
	switch r {
	case ExitUndefined:
		return "Undefined"
	case ExitNormal:
		return "Normal"
	case ExitAborted:
		return "Aborted"
	case ExitTimeout:
		return "Process Timeout"
	case ExitTimeoutInactive:
		return "Process Timeout Inactive"
	default:
		return "Unknown"
	}
}
