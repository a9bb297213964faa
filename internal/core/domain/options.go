package domain

// Options are the global build options sourced from settings and the
// environment. Timeouts are expressed in whole seconds and converted to
// milliseconds at the process boundary; 0 disables a timeout.
type Options struct {
	// ProcessTimeoutSecs is the overall wall-clock budget per child process.
	ProcessTimeoutSecs int
	// ProcessOutputTimeoutSecs is the inactivity budget per child process,
	// reset whenever new output arrives.
	ProcessOutputTimeoutSecs int
	// ShowCommandOutput surfaces captured output of every command.
	ShowCommandOutput bool
	// ShowCommandSummary prints a one-line summary before each command.
	ShowCommandSummary bool
	// ShowCommandLines prints the resolved command line, working directory
	// and expected exit code before each command.
	ShowCommandLines bool
	// Parallelism bounds the number of concurrently executing targets.
	Parallelism int
}
