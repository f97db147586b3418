package driven

import (
	"context"

	"github.com/n8nsync/n8nsync/internal/domain/model"
)

// ArtifactRunner is the driven port for the service's native import/export
// executable. Implementations inherit the parent's standard streams so the
// tool's own progress output stays visible to the operator.
type ArtifactRunner interface {
	// ImportDir bulk-imports every artifact file in dir. A non-zero exit is
	// returned as an error and aborts the whole batch for this kind.
	ImportDir(ctx context.Context, kind model.ArtifactKind, dir string) error

	// ExportArtifact exports the single artifact with the given id into
	// outDir, one file per artifact. decrypted requests plaintext credential
	// payloads suitable for version control.
	ExportArtifact(ctx context.Context, kind model.ArtifactKind, id, outDir string, decrypted bool) error
}
