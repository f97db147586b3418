package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/n8nsync/n8nsync/internal/domain/model"
	"github.com/n8nsync/n8nsync/internal/domain/port/driven"
)

// ImportService pushes source-of-truth artifact files into the running
// service through its native bulk-import executable, then activates imported
// workflows over the authenticated API.
type ImportService struct {
	runner  driven.ArtifactRunner
	gateway driven.ServiceGateway
	dataDir string
	log     *slog.Logger
}

// NewImportService creates an ImportService reading from dataDir.
func NewImportService(runner driven.ArtifactRunner, gateway driven.ServiceGateway, dataDir string, log *slog.Logger) *ImportService {
	return &ImportService{
		runner:  runner,
		gateway: gateway,
		dataDir: dataDir,
		log:     log,
	}
}

// Import imports every JSON file of the given kind and returns the file
// paths in reverse-of-listing order, most-recently-discovered first, which
// is the order workflows are activated in. An empty source directory is a
// no-op. Credentials are rendered through the templating stage first; the
// materialized directory is removed once the import executable has run,
// whatever the outcome. token is only used for workflow activation.
func (s *ImportService) Import(ctx context.Context, kind model.ArtifactKind, token string) ([]string, error) {
	files, err := listJSONFiles(filepath.Join(s.dataDir, kind.SubDir()))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.log.Info("no artifacts to import", "kind", kind.CLIName())
		return nil, nil
	}

	importDir := filepath.Join(s.dataDir, kind.SubDir())
	if kind.Templated() {
		materialized, err := MaterializeTemplates(files)
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(materialized)
		importDir = materialized
	}

	if err := s.runner.ImportDir(ctx, kind, importDir); err != nil {
		return nil, err
	}
	s.log.Info("bulk import complete", "kind", kind.CLIName(), "count", len(files))

	imported := reversed(files)
	if kind == model.KindWorkflow {
		if err := s.activateAll(ctx, imported, token); err != nil {
			return imported, err
		}
	}
	return imported, nil
}

// activateAll activates each imported workflow one at a time. A service-
// reported error fails only that workflow; transport errors that survive the
// gateway's transient-retry policy abort the batch.
func (s *ImportService) activateAll(ctx context.Context, files []string, token string) error {
	for _, file := range files {
		id, err := workflowID(file)
		if err != nil {
			s.log.Error("cannot determine workflow id, skipping activation", "file", file, "error", err)
			continue
		}

		result, err := s.gateway.ActivateWorkflow(ctx, id, token)
		if err != nil {
			return err
		}
		if result.Message != "" {
			s.log.Error("workflow activation refused by service", "workflow_id", id, "file", file, "message", result.Message)
			continue
		}
		s.log.Info("workflow activated", "workflow_id", id, "file", file, "active", result.Active)
	}
	return nil
}

// workflowID reads the id embedded in a workflow file. Workflow artifacts
// are plain JSON, so a full parse is fine here.
func workflowID(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.ID == "" {
		return "", fmt.Errorf("%s has no id field", path)
	}
	return doc.ID, nil
}

func listJSONFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return files, nil
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
