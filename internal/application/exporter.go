package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/n8nsync/n8nsync/internal/domain/model"
	"github.com/n8nsync/n8nsync/internal/domain/port/driven"
)

// ExportService pulls artifacts out of the running service through its
// native export executable and rewrites them deterministically into the
// source-of-truth directory.
type ExportService struct {
	runner  driven.ArtifactRunner
	dataDir string
	log     *slog.Logger
}

// NewExportService creates an ExportService writing into dataDir.
func NewExportService(runner driven.ArtifactRunner, dataDir string, log *slog.Logger) *ExportService {
	return &ExportService{
		runner:  runner,
		dataDir: dataDir,
		log:     log,
	}
}

// Export exports the given artifact ids, or every id declared by the files
// already in the target directory when ids is empty. Each artifact lands
// under its previously known filename, keeping names stable across export
// cycles; an artifact never seen before is named after its own name field.
// Top-level JSON keys are re-ordered alphabetically so version-control diffs
// stay independent of the exporting tool's key ordering. Per-artifact
// failures are logged and skipped, they never abort the batch.
func (s *ExportService) Export(ctx context.Context, kind model.ArtifactKind, ids []string) error {
	dir := filepath.Join(s.dataDir, kind.SubDir())
	knownNames, discovered := s.scanExisting(dir)

	targets := ids
	if len(targets) == 0 {
		targets = discovered
	}
	if len(targets) == 0 {
		s.log.Info("nothing to export", "kind", kind.CLIName(), "dir", dir)
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "n8nsync-export-")
	if err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for _, id := range targets {
		if err := s.exportOne(ctx, kind, id, tmpDir, dir, knownNames[id]); err != nil {
			s.log.Error("export failed, skipping artifact", "kind", kind.CLIName(), "artifact_id", id, "error", err)
		}
	}
	return nil
}

// scanExisting maps declared artifact ids to the filenames currently holding
// them, and returns the ids in listing order. Files whose id cannot be
// located (some credential files are templates, not valid JSON) are reported
// and excluded from filename derivation only.
func (s *ExportService) scanExisting(dir string) (map[string]string, []string) {
	names := make(map[string]string)
	var order []string

	files, err := listJSONFiles(dir)
	if err != nil {
		s.log.Error("cannot scan export directory", "dir", dir, "error", err)
		return names, order
	}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			s.log.Error("cannot read artifact file", "file", file, "error", err)
			continue
		}
		id, ok := ExtractDeclaredID(raw)
		if !ok {
			s.log.Error("no artifact id found in file", "file", file)
			continue
		}
		if _, seen := names[id]; !seen {
			names[id] = filepath.Base(file)
			order = append(order, id)
		}
	}
	return names, order
}

func (s *ExportService) exportOne(ctx context.Context, kind model.ArtifactKind, id, tmpDir, dir, knownName string) error {
	// Credentials are exported decrypted: encrypted payloads are useless as
	// version-controlled source of truth.
	if err := s.runner.ExportArtifact(ctx, kind, id, tmpDir, kind == model.KindCredential); err != nil {
		return err
	}

	exported := filepath.Join(tmpDir, id+".json")
	raw, err := os.ReadFile(exported)
	if err != nil {
		return fmt.Errorf("read exported file: %w", err)
	}

	normalized, name, err := normalizeArtifact(raw)
	if err != nil {
		return fmt.Errorf("normalize exported artifact: %w", err)
	}

	filename := knownName
	if filename == "" {
		filename = deriveFileName(name, id)
	}
	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, normalized, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := os.Remove(exported); err != nil {
		return fmt.Errorf("remove transient export file: %w", err)
	}

	s.log.Info("artifact exported", "kind", kind.CLIName(), "artifact_id", id, "file", target)
	return nil
}

// normalizeArtifact rewrites the exported JSON with its top-level keys in
// alphabetical order and returns the artifact's name field alongside.
func normalizeArtifact(raw []byte) ([]byte, string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", err
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, k := range keys {
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, "", err
		}
		buf.WriteString("  ")
		buf.Write(keyJSON)
		buf.WriteString(": ")

		var value bytes.Buffer
		if err := json.Indent(&value, doc[k], "  ", "  "); err != nil {
			return nil, "", err
		}
		buf.Write(value.Bytes())
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	var name string
	if rawName, ok := doc["name"]; ok {
		// Best effort: a missing or non-string name falls back to the id.
		_ = json.Unmarshal(rawName, &name)
	}
	return buf.Bytes(), name, nil
}

// deriveFileName builds a filename for an artifact never exported before,
// from its name field, falling back to its id.
func deriveFileName(name, id string) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = id
	}
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, base)
	return sanitized + ".json"
}
