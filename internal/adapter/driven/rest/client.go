// Package rest implements the ServiceGateway port against the workflow
// service's HTTP surface, on top of a small retryable request client.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the attempts of a single logical request. The contract
// is N total observable attempts: attempts 1..N-1 are retried after a fixed
// Delay when ShouldRetry approves the failure, the Nth attempt runs
// unconditionally and its outcome is final. A rejected failure propagates
// immediately with no sleep. Constructed per call site, never shared.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	ShouldRetry func(error) bool
}

// Request describes one logical HTTP exchange. A non-nil Body is JSON-encoded
// with Content-Type set automatically. A non-nil Out has the response body
// decoded into it; decode failures count as failures of that attempt and are
// seen by the retry predicate like any network error.
type Request struct {
	Method string
	Path   string
	Header map[string]string
	Body   any
	Out    any
	Retry  *RetryPolicy
}

// StatusError is returned for non-2xx responses. The raw body is kept so
// callers can extract a service-reported message.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Client executes requests against a single host/port origin.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a request client for the given origin, e.g.
// "http://localhost:5678".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// Do performs the request, applying the retry policy when one is supplied.
// It returns the raw response body of the successful attempt.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if req.Retry == nil {
		return c.attempt(ctx, req)
	}

	policy := req.Retry
	retries := 0
	if policy.MaxAttempts > 1 {
		retries = policy.MaxAttempts - 1
	}

	var body []byte
	operation := func() error {
		b, err := c.attempt(ctx, req)
		if err != nil {
			if policy.ShouldRetry != nil && !policy.ShouldRetry(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	schedule := backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Delay), uint64(retries))
	if err := backoff.Retry(operation, backoff.WithContext(schedule, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// attempt is exactly one network round trip plus the optional decode.
func (c *Client) attempt(ctx context.Context, req Request) ([]byte, error) {
	var payload io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body for %s %s: %w", req.Method, req.Path, err)
		}
		payload = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, payload)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", req.Method, req.Path, err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: body}
	}

	if req.Out != nil {
		if err := json.Unmarshal(body, req.Out); err != nil {
			return nil, fmt.Errorf("decode response of %s %s: %w", req.Method, req.Path, err)
		}
	}
	return body, nil
}
