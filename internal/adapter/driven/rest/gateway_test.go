package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(t *testing.T, handler http.Handler) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := NewGateway(NewClient(srv.URL), time.Millisecond, testLogger())
	g.activate.Delay = time.Millisecond
	return g, srv
}

func TestAwaitReadyPollsThroughNonJSONBodies(t *testing.T) {
	var calls atomic.Int64
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/owner/setup", r.URL.Path)
		if calls.Add(1) < 3 {
			// The service serves its SPA shell while still booting.
			_, _ = w.Write([]byte("<!DOCTYPE html><html></html>"))
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))

	require.NoError(t, g.AwaitReady(context.Background()))
	assert.EqualValues(t, 3, calls.Load())
}

func TestAwaitReadyStopsOnContextCancel(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("still booting"))
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := g.AwaitReady(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoginDecodesIdentity(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@example.com", body["emailOrLdapLoginId"])
		assert.Equal(t, "hunter2", body["password"])
		_, _ = w.Write([]byte(`{"data":{"id":"u1","email":"admin@example.com"}}`))
	}))

	owner, err := g.Login(context.Background(), "admin@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u1", owner.ID)
	assert.True(t, owner.IsProvisioned())
}

func TestLoginReturnsPlaceholderUserUnprovisioned(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"u1","email":""}}`))
	}))

	owner, err := g.Login(context.Background(), "admin@example.com", "hunter2")
	require.NoError(t, err)
	assert.False(t, owner.IsProvisioned())
}

func TestSetupOwnerSendsFixedDisplayNames(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/owner/setup", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Admin", body["firstName"])
		assert.Equal(t, "Owner", body["lastName"])
		_, _ = w.Write([]byte(`{"data":{"id":"u1","email":"admin@example.com"}}`))
	}))

	owner, err := g.SetupOwner(context.Background(), "admin@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", owner.Email)
}

func TestActivateWorkflowSendsTokenHeader(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workflows/abc123/activate", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("X-N8N-API-KEY"))
		_, _ = w.Write([]byte(`{"id":"abc123","active":true}`))
	}))

	result, err := g.ActivateWorkflow(context.Background(), "abc123", "tok")
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Empty(t, result.Message)
}

func TestActivateWorkflowBusinessErrorIsNotFatal(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"workflow has no trigger node"}`))
	}))

	result, err := g.ActivateWorkflow(context.Background(), "abc123", "tok")
	require.NoError(t, err, "a service-reported message is a business result, not an error")
	assert.Equal(t, "workflow has no trigger node", result.Message)
}

func TestActivateWorkflowRetriesDroppedConnections(t *testing.T) {
	var calls atomic.Int64
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The service is known to drop the connection right after an import
		// while it finishes indexing; simulate two such drops.
		if calls.Add(1) < 3 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte(`{"id":"abc123","active":true}`))
	}))

	result, err := g.ActivateWorkflow(context.Background(), "abc123", "tok")
	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.EqualValues(t, 3, calls.Load())
}

func TestActivateWorkflowNonTransientFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	g := NewGateway(NewClient(srv.URL), time.Millisecond, testLogger())
	g.activate.Delay = time.Millisecond

	_, err := g.ActivateWorkflow(context.Background(), "abc123", "tok")
	require.Error(t, err)
}
