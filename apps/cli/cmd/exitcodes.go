package cmd

// Exit codes for the giraftest CLI
const (
	// ExitSuccess indicates every executed case passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more cases failed
	ExitTestFailure = 1

	// ExitConfigError indicates invalid configuration or a suite that cannot be loaded
	ExitConfigError = 3

	// ExitNetworkError indicates the server did not become reachable
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
