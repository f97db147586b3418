package application

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// MaterializeTemplates renders each input file as a text template with the
// full process environment as data context ({{.API_SECRET}} and friends) and
// writes the results under the same base filenames in a fresh temporary
// directory. The originals are never touched. The caller must remove the
// returned directory once the import executable has consumed it, so rendered
// secret material does not linger on disk.
func MaterializeTemplates(paths []string) (string, error) {
	dir, err := os.MkdirTemp("", "n8nsync-materialized-")
	if err != nil {
		return "", fmt.Errorf("create template directory: %w", err)
	}

	env := environMap()
	for _, path := range paths {
		if err := renderFile(path, filepath.Join(dir, filepath.Base(path)), env); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

func renderFile(src, dst string, env map[string]string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read template %s: %w", src, err)
	}

	tmpl, err := template.New(filepath.Base(src)).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", src, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, env); err != nil {
		return fmt.Errorf("render template %s: %w", src, err)
	}

	// 0600: rendered credential files hold live secrets.
	if err := os.WriteFile(dst, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write rendered file %s: %w", dst, err)
	}
	return nil
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
