package installer

import "cluster-wizard/internal/domain"

// FromExecution wraps a command result into the uniform outcome shape the
// UI layer consumes. It never fabricates success from a failed execution;
// the only success-from-failure path is the explicit already-installed
// reclassification in InstallComponent.
func FromExecution(result domain.ExecutionResult, successMsg, failureMsg string) domain.InstallationOutcome {
	message := failureMsg
	if result.Succeeded {
		message = successMsg
	}
	return domain.InstallationOutcome{
		Succeeded: result.Succeeded,
		Message:   message,
		RawOutput: result.Stdout,
		RawError:  result.Stderr,
	}
}

// Skipped marks a deliberate no-op step.
func Skipped(message string) domain.InstallationOutcome {
	return domain.InstallationOutcome{
		Succeeded: true,
		Skipped:   true,
		Message:   message,
	}
}

// Failure builds a failure outcome with a short human-readable message.
func Failure(message string) domain.InstallationOutcome {
	return domain.InstallationOutcome{
		Succeeded: false,
		Message:   message,
	}
}
