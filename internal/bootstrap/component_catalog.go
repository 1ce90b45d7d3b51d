package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/browser"

	"cluster-wizard/internal/domain"
)

// componentCatalog lists the tools the wizard can install, in checklist
// order. Install state is filled in per request from live probes.
var componentCatalog = []domain.ComponentOption{
	{
		ID:          string(domain.ComponentDocker),
		Name:        "Docker",
		Description: "Container runtime used by local clusters and image builds.",
		DocsURL:     "https://docs.docker.com/get-docker/",
	},
	{
		ID:          string(domain.ComponentKubectl),
		Name:        "kubectl",
		Description: "Kubernetes command-line client for interacting with clusters.",
		DocsURL:     "https://kubernetes.io/docs/tasks/tools/",
	},
	{
		ID:          string(domain.ComponentHelm),
		Name:        "Helm",
		Description: "Package manager for Kubernetes charts.",
		DocsURL:     "https://helm.sh/docs/intro/install/",
	},
	{
		ID:          string(domain.ComponentGit),
		Name:        "Git",
		Description: "Version control client required for fetching chart sources.",
		DocsURL:     "https://git-scm.com/downloads",
	},
	{
		ID:          string(domain.ComponentMinikube),
		Name:        "Minikube",
		Description: "Single-node local Kubernetes cluster.",
		DocsURL:     "https://minikube.sigs.k8s.io/docs/start/",
	},
	{
		ID:          string(domain.ComponentKind),
		Name:        "kind",
		Description: "Kubernetes clusters running in Docker containers.",
		DocsURL:     "https://kind.sigs.k8s.io/docs/user/quick-start/",
	},
}

// ListComponents returns the component checklist with live install state
// merged in from prerequisite probes.
func (a *App) ListComponents() []domain.ComponentOption {
	probes := a.Engine.CheckPrerequisites(context.Background())

	out := make([]domain.ComponentOption, len(componentCatalog))
	copy(out, componentCatalog)
	for i := range out {
		if probe, ok := probes[domain.Component(out[i].ID)]; ok {
			out[i].Installed = probe.Installed
			out[i].Version = probe.Version
		}
	}
	return out
}

// OpenComponentDocs opens the documentation page for one component in the
// user's default browser.
func (a *App) OpenComponentDocs(name string) error {
	id := strings.ToLower(strings.TrimSpace(name))
	for _, option := range componentCatalog {
		if option.ID == id {
			if err := browser.OpenURL(option.DocsURL); err != nil {
				return fmt.Errorf("open docs for %s: %w", option.ID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("unknown component: %s", name)
}
