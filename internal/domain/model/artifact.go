package model

import "fmt"

// ArtifactKind selects one of the two artifact families the engine syncs.
type ArtifactKind string

const (
	KindWorkflow   ArtifactKind = "workflow"
	KindCredential ArtifactKind = "credential"
)

// ParseArtifactKind maps a CLI-supplied type argument to an ArtifactKind.
// Both singular and plural spellings are accepted because the native n8n
// subcommands use "workflow" but "credentials".
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch s {
	case "workflow", "workflows":
		return KindWorkflow, nil
	case "credential", "credentials":
		return KindCredential, nil
	default:
		return "", fmt.Errorf("unknown artifact type %q (want workflow or credentials)", s)
	}
}

// CLIName returns the suffix the native executable uses for this kind,
// as in "import:workflow" and "export:credentials".
func (k ArtifactKind) CLIName() string {
	if k == KindCredential {
		return "credentials"
	}
	return "workflow"
}

// SubDir returns the source-of-truth subdirectory for this kind under the
// data directory.
func (k ArtifactKind) SubDir() string {
	if k == KindCredential {
		return "credentials"
	}
	return "workflows"
}

// Templated reports whether files of this kind pass through the environment
// templating stage before import. Only credentials carry secrets.
func (k ArtifactKind) Templated() bool {
	return k == KindCredential
}
