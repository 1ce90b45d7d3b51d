package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"cluster-wizard/internal/config"
	"cluster-wizard/internal/domain"
	"cluster-wizard/internal/execx"
	"cluster-wizard/internal/installer"
	"cluster-wizard/internal/jobs"
	"cluster-wizard/internal/platform"
	"cluster-wizard/internal/prereq"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// wizardEngine isolates the installation orchestrator behind an interface.
type wizardEngine interface {
	InstallHomebrew(ctx context.Context) domain.InstallationOutcome
	InstallComponent(ctx context.Context, name string) domain.InstallationOutcome
	UpdatePackageManager(ctx context.Context) domain.InstallationOutcome
	StartCluster(ctx context.Context, name string) domain.InstallationOutcome
	VerifyInstallation(ctx context.Context) domain.VerificationSummary
	CheckPrerequisites(ctx context.Context) map[domain.Component]domain.ProbeResult
	ExecuteCommand(ctx context.Context, commandLine string) domain.ExecutionResult
}

// hostDetector isolates environment detection behind an interface.
type hostDetector interface {
	DetectPlatform(ctx context.Context) domain.PlatformInfo
	DetectPackageManager(ctx context.Context, platform domain.PlatformInfo) domain.PackageManager
}

// App wires configuration, the install engine, and UI runtime callbacks.
// Every bound method resolves to a result value; internal faults are
// recovered at this boundary so the UI can always render a message.
type App struct {
	Settings domain.Settings
	Store    config.Store
	Steps    *jobs.Manager
	Engine   wizardEngine
	Detector hostDetector

	assets fs.FS
	log    zerolog.Logger

	mu         sync.Mutex
	events     *jobs.EventBus
	runtimeCtx context.Context
}

// New builds the application with persisted settings and the real engine.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded
// frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".cluster-wizard", "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("app", "cluster-wizard").Logger()

	runner := execx.NewRunner()
	detector := platform.NewDetector(runner)
	prober := prereq.NewProber(runner)
	engine := installer.NewOrchestrator(runner, detector, prober, logger)
	engine.SetDefaultTimeout(time.Duration(settings.InstallTimeoutMinutes) * time.Minute)

	app := &App{
		Settings: settings,
		Store:    store,
		Steps:    jobs.NewManager(),
		Engine:   engine,
		Detector: detector,
		assets:   assets,
		log:      logger,
		events:   jobs.NewEventBus(1000),
	}
	if settings.StreamCommandOutput {
		engine.OnOutput = app.publishOutput
	}
	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Cluster Wizard",
		Width:       1080,
		Height:      760,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// DetectOS returns the host platform identity, computed fresh per call.
func (a *App) DetectOS() domain.PlatformInfo {
	return a.Detector.DetectPlatform(context.Background())
}

// DetectPackageManager returns the selected package manager and OS family.
func (a *App) DetectPackageManager() domain.ManagerSelection {
	ctx := context.Background()
	info := a.Detector.DetectPlatform(ctx)
	return domain.ManagerSelection{
		PackageManager: a.Detector.DetectPackageManager(ctx, info),
		PlatformFamily: info.Family,
	}
}

// CheckPrerequisites probes all managed components.
func (a *App) CheckPrerequisites() map[domain.Component]domain.ProbeResult {
	return a.Engine.CheckPrerequisites(context.Background())
}

// InstallHomebrew bootstraps Homebrew where applicable.
func (a *App) InstallHomebrew() domain.InstallationOutcome {
	return a.runStep("homebrew", a.Engine.InstallHomebrew)
}

// UpdatePackageManager refreshes the detected package manager.
func (a *App) UpdatePackageManager() domain.InstallationOutcome {
	return a.runStep("update", a.Engine.UpdatePackageManager)
}

// InstallComponent installs one managed component by name.
func (a *App) InstallComponent(name string) domain.InstallationOutcome {
	step := strings.ToLower(strings.TrimSpace(name))
	if step == "" {
		step = "component"
	}
	return a.runStep(step, func(ctx context.Context) domain.InstallationOutcome {
		return a.Engine.InstallComponent(ctx, name)
	})
}

// StartCluster starts a local cluster. An empty provider falls back to the
// configured default.
func (a *App) StartCluster(provider string) domain.InstallationOutcome {
	selected := strings.TrimSpace(provider)
	if selected == "" {
		a.mu.Lock()
		selected = a.Settings.ClusterProvider
		a.mu.Unlock()
	}
	return a.runStep("cluster", func(ctx context.Context) domain.InstallationOutcome {
		return a.Engine.StartCluster(ctx, selected)
	})
}

// VerifyInstallation re-checks docker, kubectl, and cluster reachability.
func (a *App) VerifyInstallation() domain.VerificationSummary {
	return a.Engine.VerifyInstallation(context.Background())
}

// ExecuteCommand is the diagnostic passthrough for operator-supplied
// command lines. Input is trusted-operator only; no sandboxing applies.
func (a *App) ExecuteCommand(commandLine string) (result domain.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Msg("execute-command fault")
			result = domain.ExecutionResult{
				Succeeded: false,
				ExitCode:  -1,
				Stderr:    fmt.Sprintf("internal error: %v", r),
			}
		}
	}()
	return a.Engine.ExecuteCommand(context.Background(), commandLine)
}

// CurrentStep returns current step metadata and status.
func (a *App) CurrentStep() domain.Step {
	return a.Steps.Current()
}

// WizardEvents returns all events with sequence greater than sinceSeq.
func (a *App) WizardEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	a.mu.Unlock()

	return normalized, nil
}

// runStep tracks one wizard step through its lifecycle, publishes events,
// and converts panics into failure outcomes.
func (a *App) runStep(step string, fn func(ctx context.Context) domain.InstallationOutcome) (outcome domain.InstallationOutcome) {
	if err := a.Steps.Begin(step); err != nil {
		return installer.Failure(err.Error())
	}
	a.publishStatus(step, domain.StepChecking, "Checking "+step)

	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Str("step", step).Interface("panic", r).Msg("step fault")
			outcome = installer.Failure(fmt.Sprintf("internal error: %v", r))
			a.finishStep(step, outcome)
		}
	}()

	outcome = fn(context.Background())
	a.finishStep(step, outcome)
	return outcome
}

// finishStep applies terminal transitions and publishes the outcome.
func (a *App) finishStep(step string, outcome domain.InstallationOutcome) {
	switch {
	case outcome.Skipped:
		_ = a.Steps.Transition(domain.StepSkipped)
		a.publishStatus(step, domain.StepSkipped, outcome.Message)
	case outcome.Succeeded:
		_ = a.Steps.Transition(domain.StepInstalling)
		_ = a.Steps.Transition(domain.StepSucceeded)
		a.publishStatus(step, domain.StepSucceeded, outcome.Message)
	default:
		_ = a.Steps.Transition(domain.StepFailed)
		a.publishEvent(jobs.Event{
			Step:    step,
			Type:    jobs.EventTypeError,
			Status:  domain.StepFailed,
			Message: outcome.Message,
		})
	}

	a.publishEvent(jobs.Event{
		Step:    step,
		Type:    jobs.EventTypeOutcome,
		Message: outcome.Message,
	})
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(step string, status domain.StepStatus, message string) {
	a.publishEvent(jobs.Event{
		Step:    step,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishOutput forwards one streamed command output chunk.
func (a *App) publishOutput(step, chunk string) {
	a.publishEvent(jobs.Event{
		Step:  step,
		Type:  jobs.EventTypeOutput,
		Chunk: chunk,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "wizard:event", published)
	}
}

// normalizeSettings trims user inputs and applies defaults for invalid values.
func normalizeSettings(settings domain.Settings) domain.Settings {
	provider, err := domain.ParseClusterProvider(settings.ClusterProvider)
	if err != nil {
		provider = domain.ClusterMinikube
	}
	settings.ClusterProvider = string(provider)

	if settings.InstallTimeoutMinutes < 1 {
		settings.InstallTimeoutMinutes = config.DefaultSettings().InstallTimeoutMinutes
	}
	return settings
}
