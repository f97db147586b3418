package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n8nsync/n8nsync/internal/domain/model"
	"github.com/n8nsync/n8nsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*APIKeyRepo)(nil)

// APIKeyRepo is the SQLite implementation of the TokenStore port. It speaks
// directly to the service's user_api_keys table; scopes are persisted the way
// the service stores them, as a JSON array string.
type APIKeyRepo struct {
	db *DB
}

// NewAPIKeyRepo creates a new APIKeyRepo on the given store connection.
func NewAPIKeyRepo(db *DB) *APIKeyRepo {
	return &APIKeyRepo{db: db}
}

// FindAPIKey returns the key row for (userID, label), or nil when absent.
func (r *APIKeyRepo) FindAPIKey(ctx context.Context, userID, label string) (*model.APIKey, error) {
	const query = `SELECT id, userId, label, apiKey, scopes, createdAt, updatedAt
		FROM user_api_keys WHERE userId = ? AND label = ?`

	var key model.APIKey
	var scopesJSON string
	err := r.db.Conn.QueryRowContext(ctx, query, userID, label).Scan(
		&key.ID, &key.UserID, &key.Label, &key.APIKey,
		&scopesJSON, &key.CreatedAt, &key.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find api key for user %q label %q: %w", userID, label, err)
	}

	if err := json.Unmarshal([]byte(scopesJSON), &key.Scopes); err != nil {
		return nil, fmt.Errorf("decode scopes for api key %q: %w", key.ID, err)
	}
	return &key, nil
}

// InsertAPIKey persists a freshly minted key row with named parameters.
func (r *APIKeyRepo) InsertAPIKey(ctx context.Context, key model.APIKey) error {
	scopesJSON, err := json.Marshal(key.Scopes)
	if err != nil {
		return fmt.Errorf("encode scopes for api key %q: %w", key.ID, err)
	}

	const query = `INSERT INTO user_api_keys (id, userId, label, apiKey, scopes, createdAt, updatedAt)
		VALUES (:id, :userId, :label, :apiKey, :scopes, :createdAt, :updatedAt)`

	_, err = r.db.Conn.ExecContext(ctx, query,
		sql.Named("id", key.ID),
		sql.Named("userId", key.UserID),
		sql.Named("label", key.Label),
		sql.Named("apiKey", key.APIKey),
		sql.Named("scopes", string(scopesJSON)),
		sql.Named("createdAt", key.CreatedAt),
		sql.Named("updatedAt", key.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert api key %q: %w", key.ID, err)
	}
	return nil
}
