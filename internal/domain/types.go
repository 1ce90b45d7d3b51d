package domain

import (
	"fmt"
	"strings"
)

// OSFamily groups host operating systems into the families the wizard supports.
type OSFamily string

const (
	OSWindows     OSFamily = "windows"
	OSMacOS       OSFamily = "macos"
	OSLinux       OSFamily = "linux"
	OSUnsupported OSFamily = "unsupported"
)

// PackageManager identifies the host-level package manager used for installs.
type PackageManager string

const (
	PkgHomebrew   PackageManager = "homebrew"
	PkgWinget     PackageManager = "winget"
	PkgChocolatey PackageManager = "chocolatey"
	PkgApt        PackageManager = "apt"
	PkgYum        PackageManager = "yum"
	PkgDnf        PackageManager = "dnf"
	PkgPacman     PackageManager = "pacman"
	PkgUnknown    PackageManager = "unknown"
)

// Component is one of the fixed tools the wizard manages.
type Component string

const (
	ComponentDocker   Component = "docker"
	ComponentKubectl  Component = "kubectl"
	ComponentHelm     Component = "helm"
	ComponentGit      Component = "git"
	ComponentMinikube Component = "minikube"
	ComponentKind     Component = "kind"
)

// Components returns the managed component set in wizard display order.
func Components() []Component {
	return []Component{
		ComponentDocker,
		ComponentKubectl,
		ComponentHelm,
		ComponentGit,
		ComponentMinikube,
		ComponentKind,
	}
}

// ParseComponent validates a caller-supplied component name against the fixed set.
func ParseComponent(name string) (Component, error) {
	candidate := Component(strings.ToLower(strings.TrimSpace(name)))
	for _, component := range Components() {
		if component == candidate {
			return component, nil
		}
	}
	return "", fmt.Errorf("unknown component: %s", name)
}

// ClusterProvider selects which local cluster tool the wizard drives.
type ClusterProvider string

const (
	ClusterMinikube ClusterProvider = "minikube"
	ClusterKind     ClusterProvider = "kind"
)

// ParseClusterProvider validates a caller-supplied cluster type string.
func ParseClusterProvider(name string) (ClusterProvider, error) {
	switch ClusterProvider(strings.ToLower(strings.TrimSpace(name))) {
	case ClusterMinikube:
		return ClusterMinikube, nil
	case ClusterKind:
		return ClusterKind, nil
	default:
		return "", fmt.Errorf("unknown cluster type: %s", name)
	}
}

// PlatformInfo describes the host as seen at detection time.
type PlatformInfo struct {
	Family    OSFamily `json:"family"`
	Arch      string   `json:"arch"`
	Release   string   `json:"release"`
	Hostname  string   `json:"hostname"`
	CPUCount  int      `json:"cpuCount"`
	MemoryGiB int      `json:"memoryGiB"`
}

// ManagerSelection pairs the detected package manager with its platform family.
type ManagerSelection struct {
	PackageManager PackageManager `json:"packageManager"`
	PlatformFamily OSFamily       `json:"platformFamily"`
}

// ProbeResult reports install status for one component version check.
type ProbeResult struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ExecutionResult is the normalized outcome of one external command invocation.
type ExecutionResult struct {
	Succeeded bool   `json:"succeeded"`
	ExitCode  int    `json:"exitCode"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
}

// InstallationOutcome is the result surfaced to the UI for one install/start step.
type InstallationOutcome struct {
	Succeeded bool   `json:"succeeded"`
	Skipped   bool   `json:"skipped"`
	Message   string `json:"message"`
	RawOutput string `json:"rawOutput,omitempty"`
	RawError  string `json:"rawError,omitempty"`
}

// VerificationSummary carries the three independent post-install checks.
type VerificationSummary struct {
	DockerReachable   bool `json:"dockerReachable"`
	KubectlConfigured bool `json:"kubectlConfigured"`
	ClusterReachable  bool `json:"clusterReachable"`
}

// Settings contains user-selectable wizard configuration.
type Settings struct {
	ClusterProvider       string `json:"clusterProvider"`
	InstallTimeoutMinutes int    `json:"installTimeoutMinutes"`
	StreamCommandOutput   bool   `json:"streamCommandOutput"`
}
