// Package cli drives the workflow service's native import/export executable.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/n8nsync/n8nsync/internal/domain/model"
	"github.com/n8nsync/n8nsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ArtifactRunner = (*Runner)(nil)

// Runner shells out to the service's CLI. Standard streams are inherited so
// the tool's own progress output reaches the operator unchanged.
type Runner struct {
	bin string
}

// NewRunner creates a Runner invoking the given executable, typically "n8n".
func NewRunner(bin string) *Runner {
	return &Runner{bin: bin}
}

// ImportDir runs `<bin> import:<kind> --separate --input <dir>` once for the
// whole directory. A non-zero exit aborts the batch for this kind.
func (r *Runner) ImportDir(ctx context.Context, kind model.ArtifactKind, dir string) error {
	args := []string{"import:" + kind.CLIName(), "--separate", "--input", dir}
	if err := r.run(ctx, args); err != nil {
		return fmt.Errorf("bulk import of %s from %s: %w", kind.CLIName(), dir, err)
	}
	return nil
}

// ExportArtifact runs `<bin> export:<kind> [--decrypted] --separate --output
// <outDir> --id <id>`, producing one <id>.json file in outDir.
func (r *Runner) ExportArtifact(ctx context.Context, kind model.ArtifactKind, id, outDir string, decrypted bool) error {
	args := []string{"export:" + kind.CLIName()}
	if decrypted {
		args = append(args, "--decrypted")
	}
	args = append(args, "--separate", "--output", outDir, "--id", id)
	if err := r.run(ctx, args); err != nil {
		return fmt.Errorf("export of %s %q: %w", kind.CLIName(), id, err)
	}
	return nil
}

func (r *Runner) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
