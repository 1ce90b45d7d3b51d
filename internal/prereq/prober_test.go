package prereq

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"cluster-wizard/internal/domain"
	"cluster-wizard/internal/execx"
)

// fakeRunner maps command lines to canned execution results.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]domain.ExecutionResult
	calls   []string
}

// Run returns the canned result, or a failure for unknown commands.
func (f *fakeRunner) Run(_ context.Context, commandLine string, _ execx.Options) domain.ExecutionResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, commandLine)

	if result, ok := f.results[commandLine]; ok {
		return result
	}
	return domain.ExecutionResult{
		Succeeded: false,
		ExitCode:  127,
		Stderr:    "command not found",
	}
}

// TestCheckAllProbesEveryComponent checks coverage and classification.
func TestCheckAllProbesEveryComponent(t *testing.T) {
	runner := &fakeRunner{
		results: map[string]domain.ExecutionResult{
			"docker --version":         {Succeeded: true, Stdout: "Docker version 27.3.1, build ce12230\n"},
			"kubectl version --client": {Succeeded: true, Stdout: "Client Version: v1.31.0\n"},
			"git --version":            {Succeeded: true, Stdout: "git version 2.46.0\n"},
		},
	}
	prober := NewProberForTests(runner, time.Second)

	results := prober.CheckAll(context.Background())
	if len(results) != len(domain.Components()) {
		t.Fatalf("result count = %d, want %d", len(results), len(domain.Components()))
	}

	if !results[domain.ComponentDocker].Installed {
		t.Fatal("docker should be installed")
	}
	if got := results[domain.ComponentDocker].Version; got != "Docker version 27.3.1, build ce12230" {
		t.Fatalf("docker version = %q", got)
	}
	if results[domain.ComponentHelm].Installed {
		t.Fatal("helm should not be installed")
	}
	if results[domain.ComponentHelm].Error == "" {
		t.Fatal("failed probe should carry error text")
	}

	if len(runner.calls) != len(domain.Components()) {
		t.Fatalf("probe calls = %d, want %d", len(runner.calls), len(domain.Components()))
	}
}

// TestCheckInstalledIffExitZero checks the exit-status contract per component.
func TestCheckInstalledIffExitZero(t *testing.T) {
	for component, commandLine := range probeCommands {
		okRunner := &fakeRunner{results: map[string]domain.ExecutionResult{
			commandLine: {Succeeded: true, Stdout: "v1.0.0\n"},
		}}
		result := NewProberForTests(okRunner, time.Second).Check(context.Background(), component)
		if !result.Installed {
			t.Fatalf("%s: expected installed for exit zero", component)
		}

		failRunner := &fakeRunner{results: map[string]domain.ExecutionResult{
			commandLine: {Succeeded: false, ExitCode: 1, Stderr: "broken"},
		}}
		result = NewProberForTests(failRunner, time.Second).Check(context.Background(), component)
		if result.Installed {
			t.Fatalf("%s: expected not installed for non-zero exit", component)
		}
	}
}

// TestCheckVersionFallsBackToStderr checks version extraction from stderr.
func TestCheckVersionFallsBackToStderr(t *testing.T) {
	runner := &fakeRunner{results: map[string]domain.ExecutionResult{
		"minikube version": {Succeeded: true, Stdout: "\n", Stderr: "minikube version: v1.34.0\nextra"},
	}}
	prober := NewProberForTests(runner, time.Second)

	result := prober.Check(context.Background(), domain.ComponentMinikube)
	if !result.Installed {
		t.Fatal("expected installed")
	}
	if !strings.HasPrefix(result.Version, "minikube version") {
		t.Fatalf("version = %q", result.Version)
	}
}

// TestCheckAllReturnsFreshResults checks no caching between calls.
func TestCheckAllReturnsFreshResults(t *testing.T) {
	runner := &fakeRunner{results: map[string]domain.ExecutionResult{}}
	prober := NewProberForTests(runner, time.Second)

	first := prober.CheckAll(context.Background())
	runner.mu.Lock()
	runner.results["git --version"] = domain.ExecutionResult{Succeeded: true, Stdout: "git version 2.46.0"}
	runner.mu.Unlock()
	second := prober.CheckAll(context.Background())

	if first[domain.ComponentGit].Installed {
		t.Fatal("first probe should report git missing")
	}
	if !second[domain.ComponentGit].Installed {
		t.Fatal("second probe should see the newly available git")
	}
}
