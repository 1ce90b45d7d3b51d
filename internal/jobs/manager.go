package jobs

import (
	"errors"
	"fmt"
	"sync"

	"cluster-wizard/internal/domain"
)

// ErrStepAlreadyRunning is returned when beginning a second active step.
var ErrStepAlreadyRunning = errors.New("step already running")

// Manager tracks the single allowed active wizard step and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current domain.Step
}

// NewManager creates a manager with no step started.
func NewManager() *Manager {
	return &Manager{
		current: domain.Step{Status: domain.StepNotStarted},
	}
}

// Begin starts tracking a new step in the checking state.
func (m *Manager) Begin(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isActive(m.current.Status) {
		return ErrStepAlreadyRunning
	}

	m.current = domain.Step{
		Name:   name,
		Status: domain.StepChecking,
	}
	return nil
}

// Transition validates and applies state transitions for the current step.
func (m *Manager) Transition(status domain.StepStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Name == "" {
		return fmt.Errorf("cannot transition without an active step")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current step.
func (m *Manager) Current() domain.Step {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset clears step metadata.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Step{Status: domain.StepNotStarted}
}

// IsRunning reports whether a step is actively checking or installing.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isActive(m.current.Status)
}

// isActive checks if a status represents in-flight work.
func isActive(status domain.StepStatus) bool {
	switch status {
	case domain.StepChecking, domain.StepInstalling:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed step state machine edges.
func isValidTransition(from, to domain.StepStatus) bool {
	switch from {
	case domain.StepNotStarted:
		return to == domain.StepChecking
	case domain.StepChecking:
		return to == domain.StepSkipped || to == domain.StepInstalling || to == domain.StepFailed
	case domain.StepInstalling:
		return to == domain.StepSucceeded || to == domain.StepFailed
	case domain.StepSkipped, domain.StepSucceeded, domain.StepFailed:
		return to == domain.StepChecking || to == domain.StepNotStarted
	default:
		return false
	}
}
