package model

// APIKeyLabel identifies API-key rows owned by this engine. Exactly one row
// per (userId, label) pair is expected; lookup-or-create is keyed on it.
const APIKeyLabel = "n8nsync admin key"

// APIKeyRecordID is the fixed primary key used for the minted row. The engine
// creates at most one record, so a constant identifier keeps the bootstrap
// idempotent and the row recognizable in the store.
const APIKeyRecordID = "n8nsync-admin-api-key"

// ManagementScopes is the full permission set granted to the minted key,
// covering every resource class the sync engine may need to touch through
// the public API.
var ManagementScopes = []string{
	"user:read", "user:list", "user:create", "user:changeRole", "user:delete",
	"workflow:create", "workflow:read", "workflow:update", "workflow:delete",
	"workflow:list", "workflow:move", "workflow:activate", "workflow:deactivate",
	"credential:create", "credential:move", "credential:delete",
	"execution:read", "execution:list", "execution:delete",
	"project:create", "project:read", "project:update", "project:delete", "project:list",
	"tag:create", "tag:read", "tag:update", "tag:delete", "tag:list",
	"variable:create", "variable:delete", "variable:list", "variable:update",
	"securityAudit:generate", "sourceControl:pull",
}

// APIKey is one row of the service's user_api_keys table. APIKey (the field)
// holds the signed token itself; the service trusts it by verifying the
// signature, it is never round-tripped through the service's HTTP API.
type APIKey struct {
	ID        string
	UserID    string
	Label     string
	APIKey    string
	Scopes    []string
	CreatedAt string
	UpdatedAt string
}
