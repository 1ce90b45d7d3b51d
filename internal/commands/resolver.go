package commands

import (
	"errors"

	"cluster-wizard/internal/domain"
)

// ErrUnsupportedPlatform marks OS families the wizard cannot install on.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ErrNoInstallCommand marks a (component, platform, manager) triple with no
// install path, e.g. kind via winget.
var ErrNoInstallCommand = errors.New("no install command for this package manager")

// HomebrewBootstrap is the official Homebrew install script invocation.
const HomebrewBootstrap = `/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`

// anyManager is the wildcard key for commands that apply regardless of the
// detected package manager (macOS always uses brew; Linux binary downloads
// bypass the manager entirely).
const anyManager = domain.PackageManager("*")

// commandKey addresses one cell of the install dispatch table.
type commandKey struct {
	component domain.Component
	family    domain.OSFamily
	manager   domain.PackageManager
}

// wingetFlags makes winget installs proceed unattended.
const wingetFlags = "--exact --silent --accept-source-agreements --accept-package-agreements"

// installTable holds every supported install command. Resolution tries the
// exact (component, family, manager) key first, then the family-wide
// wildcard row.
var installTable = map[commandKey]string{
	// docker
	{domain.ComponentDocker, domain.OSMacOS, anyManager}:             "brew install --cask docker",
	{domain.ComponentDocker, domain.OSWindows, domain.PkgWinget}:     "winget install --id Docker.DockerDesktop " + wingetFlags,
	{domain.ComponentDocker, domain.OSWindows, domain.PkgChocolatey}: "choco install docker-desktop -y",
	{domain.ComponentDocker, domain.OSLinux, anyManager}:             "curl -fsSL https://get.docker.com -o /tmp/get-docker.sh && sudo sh /tmp/get-docker.sh && rm -f /tmp/get-docker.sh",

	// kubectl
	{domain.ComponentKubectl, domain.OSMacOS, anyManager}:             "brew install kubectl",
	{domain.ComponentKubectl, domain.OSWindows, domain.PkgWinget}:     "winget install --id Kubernetes.kubectl " + wingetFlags,
	{domain.ComponentKubectl, domain.OSWindows, domain.PkgChocolatey}: "choco install kubernetes-cli -y",
	{domain.ComponentKubectl, domain.OSLinux, domain.PkgApt}:          "sudo apt-get update && sudo apt-get install -y kubectl",
	{domain.ComponentKubectl, domain.OSLinux, anyManager}:             `curl -LO "https://dl.k8s.io/release/$(curl -L -s https://dl.k8s.io/release/stable.txt)/bin/linux/amd64/kubectl" && sudo install -o root -g root -m 0755 kubectl /usr/local/bin/kubectl && rm -f kubectl`,

	// helm
	{domain.ComponentHelm, domain.OSMacOS, anyManager}:             "brew install helm",
	{domain.ComponentHelm, domain.OSWindows, domain.PkgWinget}:     "winget install --id Helm.Helm " + wingetFlags,
	{domain.ComponentHelm, domain.OSWindows, domain.PkgChocolatey}: "choco install kubernetes-helm -y",
	{domain.ComponentHelm, domain.OSLinux, anyManager}:             "curl -fsSL https://raw.githubusercontent.com/helm/helm/main/scripts/get-helm-3 | bash",

	// git
	{domain.ComponentGit, domain.OSMacOS, anyManager}:             "brew install git",
	{domain.ComponentGit, domain.OSWindows, domain.PkgWinget}:     "winget install --id Git.Git " + wingetFlags,
	{domain.ComponentGit, domain.OSWindows, domain.PkgChocolatey}: "choco install git -y",
	{domain.ComponentGit, domain.OSLinux, domain.PkgApt}:          "sudo apt-get update && sudo apt-get install -y git",
	{domain.ComponentGit, domain.OSLinux, domain.PkgYum}:          "sudo yum install -y git",
	{domain.ComponentGit, domain.OSLinux, domain.PkgDnf}:          "sudo dnf install -y git",
	{domain.ComponentGit, domain.OSLinux, domain.PkgPacman}:       "sudo pacman -Sy --noconfirm git",

	// minikube
	{domain.ComponentMinikube, domain.OSMacOS, anyManager}:             "brew install minikube",
	{domain.ComponentMinikube, domain.OSWindows, domain.PkgWinget}:     "winget install --id Kubernetes.minikube " + wingetFlags,
	{domain.ComponentMinikube, domain.OSWindows, domain.PkgChocolatey}: "choco install minikube -y",
	{domain.ComponentMinikube, domain.OSLinux, anyManager}:             "curl -LO https://storage.googleapis.com/minikube/releases/latest/minikube-linux-amd64 && sudo install minikube-linux-amd64 /usr/local/bin/minikube && rm -f minikube-linux-amd64",

	// kind (no winget package exists)
	{domain.ComponentKind, domain.OSMacOS, anyManager}:             "brew install kind",
	{domain.ComponentKind, domain.OSWindows, domain.PkgChocolatey}: "choco install kind -y",
	{domain.ComponentKind, domain.OSLinux, anyManager}:             "curl -Lo ./kind https://kind.sigs.k8s.io/dl/v0.30.0/kind-linux-amd64 && sudo install kind /usr/local/bin/kind && rm -f ./kind",
}

// updateTable maps each package manager to its index/self update command.
var updateTable = map[domain.PackageManager]string{
	domain.PkgHomebrew:   "brew update",
	domain.PkgWinget:     "winget source update",
	domain.PkgChocolatey: "choco upgrade chocolatey -y",
	domain.PkgApt:        "sudo apt-get update",
	domain.PkgYum:        "sudo yum makecache",
	domain.PkgDnf:        "sudo dnf makecache",
	domain.PkgPacman:     "sudo pacman -Sy --noconfirm",
}

// clusterStartTable maps cluster providers to their start commands.
var clusterStartTable = map[domain.ClusterProvider]string{
	domain.ClusterMinikube: "minikube start",
	domain.ClusterKind:     "kind create cluster",
}

// Install resolves the literal install command line for one component on
// one platform. Pure lookup, no side effects.
func Install(component domain.Component, family domain.OSFamily, manager domain.PackageManager) (string, error) {
	switch family {
	case domain.OSWindows, domain.OSMacOS, domain.OSLinux:
	default:
		return "", ErrUnsupportedPlatform
	}

	if command, ok := installTable[commandKey{component, family, manager}]; ok {
		return command, nil
	}
	if command, ok := installTable[commandKey{component, family, anyManager}]; ok {
		return command, nil
	}
	return "", ErrNoInstallCommand
}

// Update resolves the update command for a detected package manager.
func Update(manager domain.PackageManager) (string, error) {
	if command, ok := updateTable[manager]; ok {
		return command, nil
	}
	return "", errors.New("unknown package manager")
}

// ClusterStart resolves the start command for a cluster provider.
func ClusterStart(provider domain.ClusterProvider) (string, error) {
	if command, ok := clusterStartTable[provider]; ok {
		return command, nil
	}
	return "", errors.New("unknown cluster type")
}
