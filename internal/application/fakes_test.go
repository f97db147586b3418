package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/n8nsync/n8nsync/internal/domain/model"
	"github.com/n8nsync/n8nsync/internal/domain/port/driven"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway scripts the ServiceGateway port for use-case tests.
type fakeGateway struct {
	loginOwner model.Owner
	loginErr   error
	setupOwner model.Owner
	setupErr   error

	setupCalls int

	activations    []string // workflow ids in call order
	activationErr  map[string]error
	activationMsg  map[string]string
	activatedState bool
}

var _ driven.ServiceGateway = (*fakeGateway)(nil)

func (f *fakeGateway) AwaitReady(ctx context.Context) error { return nil }

func (f *fakeGateway) Login(ctx context.Context, email, password string) (model.Owner, error) {
	return f.loginOwner, f.loginErr
}

func (f *fakeGateway) SetupOwner(ctx context.Context, email, password string) (model.Owner, error) {
	f.setupCalls++
	return f.setupOwner, f.setupErr
}

func (f *fakeGateway) ActivateWorkflow(ctx context.Context, id, token string) (driven.ActivationResult, error) {
	f.activations = append(f.activations, id)
	if err := f.activationErr[id]; err != nil {
		return driven.ActivationResult{}, err
	}
	if msg := f.activationMsg[id]; msg != "" {
		return driven.ActivationResult{Message: msg}, nil
	}
	return driven.ActivationResult{Active: f.activatedState}, nil
}

// fakeTokenStore keeps API-key rows in memory, keyed the way the table is.
type fakeTokenStore struct {
	rows    map[string]model.APIKey // userID + "\x00" + label
	inserts int
	findErr error
}

var _ driven.TokenStore = (*fakeTokenStore)(nil)

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: make(map[string]model.APIKey)}
}

func (f *fakeTokenStore) FindAPIKey(ctx context.Context, userID, label string) (*model.APIKey, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if row, ok := f.rows[userID+"\x00"+label]; ok {
		return &row, nil
	}
	return nil, nil
}

func (f *fakeTokenStore) InsertAPIKey(ctx context.Context, key model.APIKey) error {
	k := key.UserID + "\x00" + key.Label
	if _, exists := f.rows[k]; exists {
		return errors.New("UNIQUE constraint failed: user_api_keys.userId, user_api_keys.label")
	}
	f.rows[k] = key
	f.inserts++
	return nil
}

// fakeRunner scripts the ArtifactRunner port. ImportDir snapshots the
// directory contents at call time, since materialized template directories
// are removed before Import returns.
type fakeRunner struct {
	importErr      error
	importedKind   model.ArtifactKind
	importedDir    string
	importedFiles  map[string]string // base name -> content at import time
	importCalls    int
	exportContent  map[string]string // id -> file content to fabricate
	exportFailures map[string]error
	exportedIDs    []string
	decryptedFlags []bool
}

var _ driven.ArtifactRunner = (*fakeRunner)(nil)

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		importedFiles:  make(map[string]string),
		exportContent:  make(map[string]string),
		exportFailures: make(map[string]error),
	}
}

func (f *fakeRunner) ImportDir(ctx context.Context, kind model.ArtifactKind, dir string) error {
	f.importCalls++
	f.importedKind = kind
	f.importedDir = dir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		f.importedFiles[e.Name()] = string(raw)
	}
	return f.importErr
}

func (f *fakeRunner) ExportArtifact(ctx context.Context, kind model.ArtifactKind, id, outDir string, decrypted bool) error {
	f.exportedIDs = append(f.exportedIDs, id)
	f.decryptedFlags = append(f.decryptedFlags, decrypted)
	if err := f.exportFailures[id]; err != nil {
		return err
	}
	content, ok := f.exportContent[id]
	if !ok {
		return errors.New("no such artifact: " + id)
	}
	return os.WriteFile(filepath.Join(outDir, id+".json"), []byte(content), 0o644)
}
