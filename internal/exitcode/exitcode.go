package exitcode

const (
	Success        = 0
	RuntimeFailure = 1
	InvalidUsage   = 2
	InvalidConfig  = 3
	// NotReady is returned by doctor when a readiness check fails.
	NotReady    = 4
	Interrupted = 130
)
