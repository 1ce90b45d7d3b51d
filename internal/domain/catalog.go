package domain

// ComponentOption describes one managed tool for the wizard checklist UI.
type ComponentOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DocsURL     string `json:"docsUrl,omitempty"`
	Installed   bool   `json:"installed"`
	Version     string `json:"version,omitempty"`
}
