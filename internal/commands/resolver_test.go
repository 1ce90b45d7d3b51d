package commands

import (
	"errors"
	"strings"
	"testing"

	"cluster-wizard/internal/domain"
)

// TestInstallIsPureAndDeterministic checks repeat lookups return identical commands.
func TestInstallIsPureAndDeterministic(t *testing.T) {
	first, err := Install(domain.ComponentKubectl, domain.OSLinux, domain.PkgApt)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	second, err := Install(domain.ComponentKubectl, domain.OSLinux, domain.PkgApt)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if first != second {
		t.Fatalf("non-deterministic resolution: %q vs %q", first, second)
	}
}

// TestInstallAptKubectl checks the apt fast path for kubectl.
func TestInstallAptKubectl(t *testing.T) {
	command, err := Install(domain.ComponentKubectl, domain.OSLinux, domain.PkgApt)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	want := "sudo apt-get update && sudo apt-get install -y kubectl"
	if command != want {
		t.Fatalf("command = %q, want %q", command, want)
	}
}

// TestInstallLinuxBinaryFallback checks non-apt managers fall back to
// direct binary download with artifact cleanup.
func TestInstallLinuxBinaryFallback(t *testing.T) {
	for _, manager := range []domain.PackageManager{domain.PkgYum, domain.PkgDnf, domain.PkgPacman, domain.PkgUnknown} {
		command, err := Install(domain.ComponentKubectl, domain.OSLinux, manager)
		if err != nil {
			t.Fatalf("manager %s: Install() error = %v", manager, err)
		}
		if !strings.Contains(command, "dl.k8s.io") {
			t.Fatalf("manager %s: command = %q, want binary download", manager, command)
		}
		if !strings.Contains(command, "rm -f") {
			t.Fatalf("manager %s: binary download must clean up artifact: %q", manager, command)
		}
	}
}

// TestInstallMacAlwaysBrew checks the manager-independent macOS rows.
func TestInstallMacAlwaysBrew(t *testing.T) {
	for _, component := range domain.Components() {
		command, err := Install(component, domain.OSMacOS, domain.PkgHomebrew)
		if err != nil {
			t.Fatalf("%s: Install() error = %v", component, err)
		}
		if !strings.HasPrefix(command, "brew install") {
			t.Fatalf("%s: command = %q, want brew install", component, command)
		}
	}
}

// TestInstallWindowsUnattendedFlags checks silent/agreement flags.
func TestInstallWindowsUnattendedFlags(t *testing.T) {
	command, err := Install(domain.ComponentMinikube, domain.OSWindows, domain.PkgWinget)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	for _, flag := range []string{"--silent", "--accept-source-agreements", "--accept-package-agreements"} {
		if !strings.Contains(command, flag) {
			t.Fatalf("command %q missing %s", command, flag)
		}
	}

	command, err = Install(domain.ComponentMinikube, domain.OSWindows, domain.PkgChocolatey)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if !strings.Contains(command, "-y") {
		t.Fatalf("choco command %q missing -y", command)
	}
}

// TestInstallKindHasNoWingetPath checks the known winget gap for kind.
func TestInstallKindHasNoWingetPath(t *testing.T) {
	if _, err := Install(domain.ComponentKind, domain.OSWindows, domain.PkgWinget); !errors.Is(err, ErrNoInstallCommand) {
		t.Fatalf("error = %v, want ErrNoInstallCommand", err)
	}

	command, err := Install(domain.ComponentKind, domain.OSWindows, domain.PkgChocolatey)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if !strings.Contains(command, "choco install kind") {
		t.Fatalf("command = %q", command)
	}
}

// TestInstallUnsupportedPlatformNeverReturnsCommand checks totality over families.
func TestInstallUnsupportedPlatformNeverReturnsCommand(t *testing.T) {
	for _, component := range domain.Components() {
		command, err := Install(component, domain.OSUnsupported, domain.PkgUnknown)
		if !errors.Is(err, ErrUnsupportedPlatform) {
			t.Fatalf("%s: error = %v, want ErrUnsupportedPlatform", component, err)
		}
		if command != "" {
			t.Fatalf("%s: command = %q, want empty", component, command)
		}
	}
}

// TestInstallCoversSupportedMatrix checks resolution is total over the
// supported families for every component and detected manager.
func TestInstallCoversSupportedMatrix(t *testing.T) {
	managersByFamily := map[domain.OSFamily][]domain.PackageManager{
		domain.OSMacOS:   {domain.PkgHomebrew},
		domain.OSWindows: {domain.PkgWinget, domain.PkgChocolatey},
		domain.OSLinux:   {domain.PkgApt, domain.PkgYum, domain.PkgDnf, domain.PkgPacman},
	}

	for family, managers := range managersByFamily {
		for _, manager := range managers {
			for _, component := range domain.Components() {
				command, err := Install(component, family, manager)
				if component == domain.ComponentKind && manager == domain.PkgWinget {
					if !errors.Is(err, ErrNoInstallCommand) {
						t.Fatalf("kind/winget: error = %v, want ErrNoInstallCommand", err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("%s/%s/%s: Install() error = %v", component, family, manager, err)
				}
				if strings.TrimSpace(command) == "" {
					t.Fatalf("%s/%s/%s: empty command", component, family, manager)
				}
			}
		}
	}
}

// TestUpdateCommandsPerManager checks the update table and the unknown case.
func TestUpdateCommandsPerManager(t *testing.T) {
	for _, manager := range []domain.PackageManager{
		domain.PkgHomebrew, domain.PkgWinget, domain.PkgChocolatey,
		domain.PkgApt, domain.PkgYum, domain.PkgDnf, domain.PkgPacman,
	} {
		command, err := Update(manager)
		if err != nil {
			t.Fatalf("%s: Update() error = %v", manager, err)
		}
		if strings.TrimSpace(command) == "" {
			t.Fatalf("%s: empty update command", manager)
		}
	}

	if _, err := Update(domain.PkgUnknown); err == nil {
		t.Fatal("expected error for unknown package manager")
	}
}

// TestClusterStartCommands checks provider start commands.
func TestClusterStartCommands(t *testing.T) {
	command, err := ClusterStart(domain.ClusterMinikube)
	if err != nil || command != "minikube start" {
		t.Fatalf("minikube: command = %q, err = %v", command, err)
	}

	command, err = ClusterStart(domain.ClusterKind)
	if err != nil || command != "kind create cluster" {
		t.Fatalf("kind: command = %q, err = %v", command, err)
	}

	if _, err := ClusterStart(domain.ClusterProvider("bogus")); err == nil {
		t.Fatal("expected error for bogus cluster type")
	}
}
