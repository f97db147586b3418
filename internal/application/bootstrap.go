// Package application holds the engine's use cases: identity bootstrap,
// credential templating, artifact import and export. It depends only on the
// driven ports, never on adapter internals.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/n8nsync/n8nsync/internal/config"
	"github.com/n8nsync/n8nsync/internal/domain/model"
	"github.com/n8nsync/n8nsync/internal/domain/port/driven"
)

// storeTimeLayout matches the datetime strings the service writes into its
// own store.
const storeTimeLayout = "2006-01-02 15:04:05.000"

// BootstrapService establishes the administrative identity and its API token
// on a freshly started instance. Both operations are idempotent; the whole
// path runs once per process invocation and carries no retry policy, since a
// failing login or a corrupt store is not recoverable by this engine.
type BootstrapService struct {
	gateway driven.ServiceGateway
	store   driven.TokenStore
	cfg     *config.Config
	log     *slog.Logger
	now     func() time.Time
}

// NewBootstrapService creates a BootstrapService with the given collaborators.
func NewBootstrapService(gateway driven.ServiceGateway, store driven.TokenStore, cfg *config.Config, log *slog.Logger) *BootstrapService {
	return &BootstrapService{
		gateway: gateway,
		store:   store,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// ResolveOwner logs in with the fixed administrative credentials. A fresh
// instance answers with the placeholder user the service creates on first
// boot; in that case the one-time owner setup is completed with the same
// credentials and its result is the identity. Safe to call repeatedly.
func (s *BootstrapService) ResolveOwner(ctx context.Context) (model.Owner, error) {
	owner, err := s.gateway.Login(ctx, s.cfg.OwnerEmail, s.cfg.OwnerPassword)
	if err != nil {
		return model.Owner{}, err
	}
	if owner.IsProvisioned() {
		s.log.Info("owner already provisioned", "user_id", owner.ID, "email", owner.Email)
		return owner, nil
	}

	s.log.Info("owner not provisioned, completing one-time setup", "email", s.cfg.OwnerEmail)
	owner, err = s.gateway.SetupOwner(ctx, s.cfg.OwnerEmail, s.cfg.OwnerPassword)
	if err != nil {
		return model.Owner{}, err
	}
	return owner, nil
}

// ResolveOrCreateAPIKey returns the administrative API token for the owner,
// minting and persisting it on first use. The service exposes no endpoint
// for a non-expiring administrative token, so the record goes straight into
// the embedded store through the TokenStore port.
func (s *BootstrapService) ResolveOrCreateAPIKey(ctx context.Context, ownerID string) (string, error) {
	existing, err := s.store.FindAPIKey(ctx, ownerID, model.APIKeyLabel)
	if err != nil {
		return "", err
	}
	if existing != nil {
		s.log.Info("reusing existing api key", "key_id", existing.ID, "user_id", ownerID)
		return existing.APIKey, nil
	}

	token, err := MintAPIToken(ownerID, s.cfg.TokenIssuer, s.cfg.TokenAudience, s.cfg.TokenSecret)
	if err != nil {
		return "", err
	}

	now := s.now().UTC().Format(storeTimeLayout)
	key := model.APIKey{
		ID:        model.APIKeyRecordID,
		UserID:    ownerID,
		Label:     model.APIKeyLabel,
		APIKey:    token,
		Scopes:    model.ManagementScopes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertAPIKey(ctx, key); err != nil {
		return "", fmt.Errorf("persist minted api key: %w", err)
	}

	s.log.Info("minted administrative api key", "key_id", key.ID, "user_id", ownerID)
	return token, nil
}
