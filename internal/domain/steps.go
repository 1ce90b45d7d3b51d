package domain

// StepStatus tracks the lifecycle of a single wizard install step.
type StepStatus string

const (
	StepNotStarted StepStatus = "not_started"
	StepChecking   StepStatus = "checking"
	StepSkipped    StepStatus = "skipped"
	StepInstalling StepStatus = "installing"
	StepSucceeded  StepStatus = "succeeded"
	StepFailed     StepStatus = "failed"
)

// Step stores the current step identity and lifecycle status.
type Step struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
}
