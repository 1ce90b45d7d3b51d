package prereq

import (
	"context"
	"strings"
	"sync"
	"time"

	"cluster-wizard/internal/domain"
	"cluster-wizard/internal/execx"
)

// probeCommands maps each managed component to its version-check command.
var probeCommands = map[domain.Component]string{
	domain.ComponentDocker:   "docker --version",
	domain.ComponentKubectl:  "kubectl version --client",
	domain.ComponentHelm:     "helm version",
	domain.ComponentGit:      "git --version",
	domain.ComponentMinikube: "minikube version",
	domain.ComponentKind:     "kind version",
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, commandLine string, opts execx.Options) domain.ExecutionResult
}

// Prober checks install status of the managed components.
type Prober struct {
	runner  commandRunner
	timeout time.Duration
}

// NewProber builds a prober backed by the real process runner.
func NewProber(runner commandRunner) *Prober {
	return &Prober{
		runner:  runner,
		timeout: execx.ProbeTimeout,
	}
}

// CheckAll probes all managed components concurrently and returns a fresh
// result per component. Probes are independent; a failing or timed-out
// probe yields installed=false for that component only.
func (p *Prober) CheckAll(ctx context.Context) map[domain.Component]domain.ProbeResult {
	components := domain.Components()
	results := make(map[domain.Component]domain.ProbeResult, len(components))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, component := range components {
		wg.Add(1)
		go func(component domain.Component) {
			defer wg.Done()
			result := p.Check(ctx, component)

			mu.Lock()
			results[component] = result
			mu.Unlock()
		}(component)
	}
	wg.Wait()

	return results
}

// Check probes a single component's version command.
func (p *Prober) Check(ctx context.Context, component domain.Component) domain.ProbeResult {
	commandLine, ok := probeCommands[component]
	if !ok {
		return domain.ProbeResult{Installed: false, Error: "no probe command for component"}
	}

	result := p.runner.Run(ctx, commandLine, execx.Options{Timeout: p.timeout})
	if !result.Succeeded {
		return domain.ProbeResult{
			Installed: false,
			Error:     strings.TrimSpace(result.Stderr),
		}
	}

	return domain.ProbeResult{
		Installed: true,
		Version:   versionLine(result),
	}
}

// versionLine extracts a human-readable version from probe output: the first
// non-empty line of stdout, falling back to stderr.
func versionLine(result domain.ExecutionResult) string {
	for _, text := range []string{result.Stdout, result.Stderr} {
		for _, line := range strings.Split(text, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// NewProberForTests creates a prober with injectable runner and timeout.
func NewProberForTests(runner commandRunner, timeout time.Duration) *Prober {
	return &Prober{runner: runner, timeout: timeout}
}
