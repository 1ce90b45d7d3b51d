package config

import "cluster-wizard/internal/domain"

// DefaultSettings returns baseline wizard configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		ClusterProvider:       string(domain.ClusterMinikube),
		InstallTimeoutMinutes: 5,
		StreamCommandOutput:   true,
	}
}
