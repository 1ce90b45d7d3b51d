package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cluster-wizard/internal/commands"
	"cluster-wizard/internal/domain"
	"cluster-wizard/internal/execx"
)

// alreadyInstalledMarkers are package manager refusals that mean the desired
// end state already holds. Matching is case-insensitive over combined output.
// Text sniffing is fragile but kept for compatibility with tool output seen
// in the field; exit codes alone do not distinguish these refusals.
var alreadyInstalledMarkers = []string{
	"already installed",
	"no available upgrade",
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, commandLine string, opts execx.Options) domain.ExecutionResult
	Probe(ctx context.Context, commandLine string) bool
}

// environmentDetector abstracts platform and package manager detection.
type environmentDetector interface {
	DetectPlatform(ctx context.Context) domain.PlatformInfo
	DetectPackageManager(ctx context.Context, platform domain.PlatformInfo) domain.PackageManager
}

// componentProber abstracts component version probing.
type componentProber interface {
	CheckAll(ctx context.Context) map[domain.Component]domain.ProbeResult
	Check(ctx context.Context, component domain.Component) domain.ProbeResult
}

// Orchestrator sequences check, resolve, execute, and reclassify for each
// installable unit. It holds no cross-call state: platform and package
// manager are re-detected on every operation.
type Orchestrator struct {
	runner   commandRunner
	detector environmentDetector
	prober   componentProber
	log      zerolog.Logger

	defaultTimeout time.Duration

	// OnOutput, when set, receives streamed command output chunks tagged
	// with the step that produced them.
	OnOutput func(step string, chunk string)
}

// NewOrchestrator builds the production orchestrator.
func NewOrchestrator(runner commandRunner, detector environmentDetector, prober componentProber, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		runner:         runner,
		detector:       detector,
		prober:         prober,
		log:            log,
		defaultTimeout: execx.DefaultTimeout,
	}
}

// SetDefaultTimeout overrides the general-purpose command timeout.
// Long-running steps (Homebrew bootstrap, Docker install, cluster start)
// keep their extended timeout.
func (o *Orchestrator) SetDefaultTimeout(timeout time.Duration) {
	if timeout > 0 {
		o.defaultTimeout = timeout
	}
}

// InstallHomebrew bootstraps Homebrew on macOS. It is a deliberate no-op on
// other platforms and when brew is already on PATH.
func (o *Orchestrator) InstallHomebrew(ctx context.Context) domain.InstallationOutcome {
	platform := o.detector.DetectPlatform(ctx)
	if platform.Family != domain.OSMacOS {
		return Skipped("Homebrew is only used on macOS")
	}
	if o.runner.Probe(ctx, "brew --version") {
		return Skipped("Homebrew already installed")
	}

	o.log.Info().Str("step", "homebrew").Msg("bootstrapping Homebrew")
	result := o.runner.Run(ctx, commands.HomebrewBootstrap, execx.Options{
		Timeout:  execx.ExtendedTimeout,
		OnOutput: o.outputSink("homebrew"),
	})
	return o.finish("homebrew", result,
		"Homebrew installed successfully",
		"Homebrew installation failed")
}

// InstallComponent installs one managed component for the detected platform
// and package manager. Idempotent package manager refusals are reclassified
// as success.
func (o *Orchestrator) InstallComponent(ctx context.Context, name string) domain.InstallationOutcome {
	component, err := domain.ParseComponent(name)
	if err != nil {
		return Failure(fmt.Sprintf("Unknown component: %s", name))
	}

	platform := o.detector.DetectPlatform(ctx)
	manager := o.detector.DetectPackageManager(ctx, platform)

	commandLine, err := commands.Install(component, platform.Family, manager)
	if errors.Is(err, commands.ErrUnsupportedPlatform) {
		return Failure(fmt.Sprintf("Cannot install %s: unsupported platform", component))
	}
	if err != nil {
		return Failure(fmt.Sprintf("Cannot install %s via %s: %v", component, manager, err))
	}

	timeout := o.defaultTimeout
	if component == domain.ComponentDocker {
		timeout = execx.ExtendedTimeout
	}

	o.log.Info().
		Str("step", string(component)).
		Str("manager", string(manager)).
		Str("family", string(platform.Family)).
		Msg("installing component")

	result := o.runner.Run(ctx, commandLine, execx.Options{
		Timeout:  timeout,
		OnOutput: o.outputSink(string(component)),
	})
	if !result.Succeeded && isAlreadyInstalled(result) {
		o.log.Info().Str("step", string(component)).Msg("reclassified refusal as already installed")
		return domain.InstallationOutcome{
			Succeeded: true,
			Message:   fmt.Sprintf("%s already installed", component),
			RawOutput: result.Stdout,
			RawError:  result.Stderr,
		}
	}

	return o.finish(string(component), result,
		fmt.Sprintf("%s installed successfully", component),
		fmt.Sprintf("%s installation failed", component))
}

// UpdatePackageManager refreshes the detected package manager's index.
func (o *Orchestrator) UpdatePackageManager(ctx context.Context) domain.InstallationOutcome {
	platform := o.detector.DetectPlatform(ctx)
	manager := o.detector.DetectPackageManager(ctx, platform)

	commandLine, err := commands.Update(manager)
	if err != nil {
		return Failure("unknown package manager")
	}

	o.log.Info().Str("manager", string(manager)).Msg("updating package manager")
	result := o.runner.Run(ctx, commandLine, execx.Options{
		Timeout:  o.defaultTimeout,
		OnOutput: o.outputSink("update"),
	})
	return o.finish("update", result,
		fmt.Sprintf("%s updated successfully", manager),
		fmt.Sprintf("%s update failed", manager))
}

// StartCluster starts a local cluster via the selected provider.
func (o *Orchestrator) StartCluster(ctx context.Context, name string) domain.InstallationOutcome {
	provider, err := domain.ParseClusterProvider(name)
	if err != nil {
		return Failure(fmt.Sprintf("Unknown cluster type: %s", name))
	}

	commandLine, err := commands.ClusterStart(provider)
	if err != nil {
		return Failure(err.Error())
	}

	o.log.Info().Str("provider", string(provider)).Msg("starting cluster")
	result := o.runner.Run(ctx, commandLine, execx.Options{
		Timeout:  execx.ExtendedTimeout,
		OnOutput: o.outputSink("cluster"),
	})
	return o.finish("cluster", result,
		fmt.Sprintf("%s cluster started", provider),
		fmt.Sprintf("%s cluster start failed", provider))
}

// VerifyInstallation re-probes docker and kubectl and checks cluster
// reachability. The three booleans are computed independently; no aggregate
// pass/fail is derived here.
func (o *Orchestrator) VerifyInstallation(ctx context.Context) domain.VerificationSummary {
	summary := domain.VerificationSummary{
		DockerReachable:   o.prober.Check(ctx, domain.ComponentDocker).Installed,
		KubectlConfigured: o.prober.Check(ctx, domain.ComponentKubectl).Installed,
		ClusterReachable:  o.runner.Probe(ctx, "kubectl cluster-info"),
	}

	o.log.Info().
		Bool("docker", summary.DockerReachable).
		Bool("kubectl", summary.KubectlConfigured).
		Bool("cluster", summary.ClusterReachable).
		Msg("verification complete")
	return summary
}

// CheckPrerequisites probes all managed components.
func (o *Orchestrator) CheckPrerequisites(ctx context.Context) map[domain.Component]domain.ProbeResult {
	return o.prober.CheckAll(ctx)
}

// ExecuteCommand is the diagnostic passthrough for operator-supplied command
// lines. No sandboxing is applied; callers must treat input as trusted.
func (o *Orchestrator) ExecuteCommand(ctx context.Context, commandLine string) domain.ExecutionResult {
	o.log.Info().Str("step", "execute").Msg("running diagnostic command")
	return o.runner.Run(ctx, commandLine, execx.Options{
		Timeout:  o.defaultTimeout,
		OnOutput: o.outputSink("execute"),
	})
}

// finish logs one step outcome and converts the execution result.
func (o *Orchestrator) finish(step string, result domain.ExecutionResult, successMsg, failureMsg string) domain.InstallationOutcome {
	outcome := FromExecution(result, successMsg, failureMsg)
	if outcome.Succeeded {
		o.log.Info().Str("step", step).Msg(successMsg)
	} else {
		o.log.Error().Str("step", step).Int("exitCode", result.ExitCode).Msg(failureMsg)
	}
	return outcome
}

// outputSink adapts the orchestrator-level streaming callback to one step.
func (o *Orchestrator) outputSink(step string) func(string) {
	if o.OnOutput == nil {
		return nil
	}
	return func(chunk string) {
		o.OnOutput(step, chunk)
	}
}

// isAlreadyInstalled reports whether a failed execution is an idempotent
// package manager refusal.
func isAlreadyInstalled(result domain.ExecutionResult) bool {
	combined := strings.ToLower(result.Stdout + "\n" + result.Stderr)
	for _, marker := range alreadyInstalledMarkers {
		if strings.Contains(combined, marker) {
			return true
		}
	}
	return false
}
