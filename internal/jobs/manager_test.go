package jobs

import (
	"testing"

	"cluster-wizard/internal/domain"
)

// TestManagerInstallLifecycle verifies normal progression to succeeded state.
func TestManagerInstallLifecycle(t *testing.T) {
	m := NewManager()
	if m.IsRunning() {
		t.Fatal("new manager should be idle")
	}

	if err := m.Begin("docker"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !m.IsRunning() {
		t.Fatal("expected running after begin")
	}

	for _, status := range []domain.StepStatus{
		domain.StepInstalling,
		domain.StepSucceeded,
	} {
		if err := m.Transition(status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	current := m.Current()
	if current.Status != domain.StepSucceeded {
		t.Fatalf("current status = %s, want succeeded", current.Status)
	}
	if m.IsRunning() {
		t.Fatal("succeeded step should not be running")
	}
}

// TestManagerSkipPath verifies checking can resolve directly to skipped.
func TestManagerSkipPath(t *testing.T) {
	m := NewManager()
	if err := m.Begin("homebrew"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.Transition(domain.StepSkipped); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if m.Current().Status != domain.StepSkipped {
		t.Fatalf("status = %s, want skipped", m.Current().Status)
	}
}

// TestManagerRejectsInvalidTransition checks state machine constraints.
func TestManagerRejectsInvalidTransition(t *testing.T) {
	m := NewManager()
	if err := m.Begin("kubectl"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := m.Transition(domain.StepSucceeded); err == nil {
		t.Fatal("checking -> succeeded should be rejected")
	}
	if err := m.Transition(domain.StepNotStarted); err == nil {
		t.Fatal("checking -> not_started should be rejected")
	}
}

// TestManagerSingleActiveStep verifies the one-step-at-a-time guard.
func TestManagerSingleActiveStep(t *testing.T) {
	m := NewManager()
	if err := m.Begin("docker"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := m.Begin("kubectl"); err != ErrStepAlreadyRunning {
		t.Fatalf("second begin error = %v, want %v", err, ErrStepAlreadyRunning)
	}

	if err := m.Transition(domain.StepFailed); err != nil {
		t.Fatalf("fail step: %v", err)
	}
	if err := m.Begin("kubectl"); err != nil {
		t.Fatalf("begin after terminal state: %v", err)
	}
}
