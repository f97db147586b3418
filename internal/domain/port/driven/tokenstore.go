package driven

import (
	"context"

	"github.com/n8nsync/n8nsync/internal/domain/model"
)

// TokenStore is the narrow escape hatch into the service's embedded store.
// The service exposes no HTTP endpoint for minting a non-expiring
// administrative token, so the engine reads and writes the user_api_keys
// table directly. Keeping the surface this small means a future official
// provisioning API could replace the SQLite adapter without touching callers.
type TokenStore interface {
	// FindAPIKey returns the API-key row for (userID, label), or nil when
	// the engine has not minted one yet.
	FindAPIKey(ctx context.Context, userID, label string) (*model.APIKey, error)

	// InsertAPIKey persists a freshly minted key row.
	InsertAPIKey(ctx context.Context, key model.APIKey) error
}
