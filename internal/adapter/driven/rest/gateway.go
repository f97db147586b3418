package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/n8nsync/n8nsync/internal/domain/model"
	"github.com/n8nsync/n8nsync/internal/domain/port/driven"
)

// DefaultPollInterval is the pause between readiness probes.
const DefaultPollInterval = 2 * time.Second

// apiKeyHeader carries the administrative token on public-API calls.
const apiKeyHeader = "X-N8N-API-KEY"

// Compile-time interface satisfaction check.
var _ driven.ServiceGateway = (*Gateway)(nil)

// Gateway implements the ServiceGateway port over the request client.
type Gateway struct {
	client       *Client
	pollInterval time.Duration
	activate     RetryPolicy
	log          *slog.Logger
}

// NewGateway creates a Gateway on the given client. pollInterval governs the
// readiness loop; pass DefaultPollInterval outside of tests.
func NewGateway(client *Client, pollInterval time.Duration, log *slog.Logger) *Gateway {
	return &Gateway{
		client:       client,
		pollInterval: pollInterval,
		activate: RetryPolicy{
			MaxAttempts: 5,
			Delay:       300 * time.Millisecond,
			ShouldRetry: IsTransientConnErr,
		},
		log: log,
	}
}

// userEnvelope is the {"data": {...}} wrapper the internal REST API uses.
type userEnvelope struct {
	Data struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"data"`
}

// AwaitReady polls the owner-setup endpoint until it answers well-formed
// JSON. While the service is still booting the endpoint serves a non-JSON
// placeholder page, so a decode failure is the deliberate "not ready" signal.
// The wait is unbounded; only ctx cancellation cuts it short.
func (g *Gateway) AwaitReady(ctx context.Context) error {
	for {
		var probe any
		_, err := g.client.Do(ctx, Request{
			Method: http.MethodGet,
			Path:   "/rest/owner/setup",
			Out:    &probe,
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		g.log.Info("service not ready yet, waiting", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.pollInterval):
		}
	}
}

// Login authenticates with the administrative credentials. The service
// answers with the resolved identity, which may still be the empty
// placeholder user on a fresh instance.
func (g *Gateway) Login(ctx context.Context, email, password string) (model.Owner, error) {
	var resp userEnvelope
	_, err := g.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/rest/login",
		Body: map[string]string{
			"emailOrLdapLoginId": email,
			"password":           password,
		},
		Out: &resp,
	})
	if err != nil {
		return model.Owner{}, fmt.Errorf("login: %w", err)
	}
	return model.Owner{ID: resp.Data.ID, Email: resp.Data.Email}, nil
}

// SetupOwner completes the one-time owner onboarding with fixed display
// names and returns the populated identity.
func (g *Gateway) SetupOwner(ctx context.Context, email, password string) (model.Owner, error) {
	var resp userEnvelope
	_, err := g.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/rest/owner/setup",
		Body: map[string]string{
			"email":     email,
			"password":  password,
			"firstName": "Admin",
			"lastName":  "Owner",
		},
		Out: &resp,
	})
	if err != nil {
		return model.Owner{}, fmt.Errorf("owner setup: %w", err)
	}
	return model.Owner{ID: resp.Data.ID, Email: resp.Data.Email}, nil
}

// ActivateWorkflow activates one workflow through the public API. Transient
// connection drops are retried with the gateway's policy; a service-reported
// error message is returned as a business result, not an error, so the
// caller can log it and continue with the rest of the batch.
func (g *Gateway) ActivateWorkflow(ctx context.Context, id, token string) (driven.ActivationResult, error) {
	var resp struct {
		Active bool `json:"active"`
	}
	_, err := g.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/v1/workflows/%s/activate", id),
		Header: map[string]string{apiKeyHeader: token},
		Out:    &resp,
		Retry:  &g.activate,
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			var payload struct {
				Message string `json:"message"`
			}
			if jsonErr := json.Unmarshal(statusErr.Body, &payload); jsonErr == nil && payload.Message != "" {
				return driven.ActivationResult{Message: payload.Message}, nil
			}
		}
		return driven.ActivationResult{}, fmt.Errorf("activate workflow %q: %w", id, err)
	}
	return driven.ActivationResult{Active: resp.Active}, nil
}
