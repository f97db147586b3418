package driven

import (
	"context"

	"github.com/n8nsync/n8nsync/internal/domain/model"
)

// ActivationResult is the outcome of activating one workflow through the
// public API. Message is non-empty when the service reported a business
// error instead of toggling the workflow; such results are logged and the
// batch continues.
type ActivationResult struct {
	Active  bool
	Message string
}

// ServiceGateway is the driven port for the workflow service's HTTP surface.
type ServiceGateway interface {
	// AwaitReady blocks until the service answers a well-formed response,
	// polling indefinitely. Only ctx cancellation makes it return early.
	AwaitReady(ctx context.Context) error

	// Login authenticates with the administrative credentials and returns
	// the identity the service resolved. The identity may be a placeholder
	// with an empty email when owner setup never completed.
	Login(ctx context.Context, email, password string) (model.Owner, error)

	// SetupOwner completes the service's one-time owner onboarding and
	// returns the populated identity.
	SetupOwner(ctx context.Context, email, password string) (model.Owner, error)

	// ActivateWorkflow activates one workflow by id using the administrative
	// API token. Transient connection drops are retried internally.
	ActivateWorkflow(ctx context.Context, id, token string) (ActivationResult, error)
}
