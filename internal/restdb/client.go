// Package restdb is a thin client for the hosted PostgREST data API. It is
// used instead of a SQL driver: every collection the app touches lives behind
// the provider's /rest/v1 endpoint, and all reads and writes are plain HTTP
// requests with filter expressions in the query string.
package restdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config carries the connection settings for the data API. It is built once
// at startup and injected into the client; nothing in this package reads
// ambient globals.
type Config struct {
	// BaseURL is the project root, e.g. "https://xyz.supabase.co".
	BaseURL string
	// AnonKey is the anonymous credential used when no user token is given.
	AnonKey string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client issues requests against named collections of the data API.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// RequestError is a non-2xx reply from the data API. It keeps the HTTP
// status and raw body so callers can surface the server-provided message.
type RequestError struct {
	Op         string
	Collection string
	Status     int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed: %d %s", e.Op, e.Collection, e.Status, e.Body)
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		anonKey: cfg.AnonKey,
		http:    hc,
	}
}

// CallOption tweaks a single request.
type CallOption func(*callSettings)

type callSettings struct {
	token string
}

// WithToken authenticates the request as the given user instead of the
// anonymous key.
func WithToken(token string) CallOption {
	return func(s *callSettings) {
		if token != "" {
			s.token = token
		}
	}
}

// FetchMany reads all rows of collection matching q into dest, which must be
// a pointer to a slice.
func (c *Client) FetchMany(ctx context.Context, collection string, q Query, dest any, opts ...CallOption) error {
	body, _, err := c.do(ctx, http.MethodGet, collection, q, nil, nil, opts)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

// FetchOne reads at most one row of collection matching q into dest. A
// missing row is not an error: it returns (false, nil) so callers can tell
// "no such row" apart from "request failed".
func (c *Client) FetchOne(ctx context.Context, collection string, q Query, dest any, opts ...CallOption) (bool, error) {
	extra := http.Header{"Accept": []string{"application/vnd.pgrst.object+json"}}
	body, status, err := c.do(ctx, http.MethodGet, collection, q, nil, extra, opts)
	if status == http.StatusNotFound || status == http.StatusNotAcceptable {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Insert creates one row and decodes the created representation into dest
// when dest is non-nil. PostgREST replies with either a bare object or a
// one-element list depending on configuration, so both shapes are accepted.
func (c *Client) Insert(ctx context.Context, collection string, row any, dest any, opts ...CallOption) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", collection, err)
	}
	extra := http.Header{"Prefer": []string{"return=representation"}}
	body, _, err := c.do(ctx, http.MethodPost, collection, Query{}, payload, extra, opts)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return decodeRepresentation(body, dest)
}

// Update applies a partial update to every row matching q.
func (c *Client) Update(ctx context.Context, collection string, q Query, patch any, opts ...CallOption) error {
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode %s patch: %w", collection, err)
	}
	_, _, err = c.do(ctx, http.MethodPatch, collection, q, payload, nil, opts)
	return err
}

// Delete removes every row matching q.
func (c *Client) Delete(ctx context.Context, collection string, q Query, opts ...CallOption) error {
	_, _, err := c.do(ctx, http.MethodDelete, collection, q, nil, nil, opts)
	return err
}

func (c *Client) do(ctx context.Context, method, collection string, q Query, payload []byte, extra http.Header, opts []CallOption) ([]byte, int, error) {
	var settings callSettings
	for _, opt := range opts {
		opt(&settings)
	}

	url := c.baseURL + "/rest/v1/" + collection
	if enc := q.Encode(); enc != "" {
		url += "?" + enc
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("build %s %s request: %w", method, collection, err)
	}

	bearer := settings.token
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s %s response: %w", method, collection, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &RequestError{
			Op:         method,
			Collection: collection,
			Status:     resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, resp.StatusCode, nil
}

// decodeRepresentation unwraps the singleton-vs-list response shape of
// return=representation writes.
func decodeRepresentation(body []byte, dest any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			return fmt.Errorf("empty representation in response")
		}
		return json.Unmarshal(list[0], dest)
	}
	return json.Unmarshal(trimmed, dest)
}
